package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// PostgresExemptionQuotaStore implements the store.ExemptionQuotaStore
// interface using a PostgreSQL database as the storage backend. The engine
// only reads quotas; the external exemption flow owns all writes.
type PostgresExemptionQuotaStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExemptionQuotaStore creates a new PostgreSQL implementation
// of the ExemptionQuotaStore interface.
func NewPostgresExemptionQuotaStore(db store.DBTX, logger *slog.Logger) *PostgresExemptionQuotaStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExemptionQuotaStore{
		db:     db,
		logger: logger.With(slog.String("component", "exemption_quota_store")),
	}
}

// Ensure PostgresExemptionQuotaStore implements store.ExemptionQuotaStore interface
var _ store.ExemptionQuotaStore = (*PostgresExemptionQuotaStore)(nil)

// GetForWeek implements store.ExemptionQuotaStore.GetForWeek
func (s *PostgresExemptionQuotaStore) GetForWeek(
	ctx context.Context,
	ownerID uuid.UUID,
	weekStart time.Time,
) (*domain.ExemptionQuota, error) {
	query := `
		SELECT id, owner_id, week_start, day_pass_total, day_pass_used,
			day_pass_date, rule_break_total, rule_break_used
		FROM exemption_quotas
		WHERE owner_id = $1 AND week_start = $2
	`

	var (
		quota       domain.ExemptionQuota
		dayPassDate sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, ownerID, domain.Midnight(weekStart)).Scan(
		&quota.ID,
		&quota.OwnerID,
		&quota.WeekStart,
		&quota.DayPassTotal,
		&quota.DayPassUsed,
		&dayPassDate,
		&quota.RuleBreakTotal,
		&quota.RuleBreakUsed,
	)
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrQuotaNotFound
		}
		return nil, MapError(err)
	}

	if dayPassDate.Valid {
		t := dayPassDate.Time.UTC()
		quota.DayPassDate = &t
	}
	quota.WeekStart = quota.WeekStart.UTC()

	return &quota, nil
}
