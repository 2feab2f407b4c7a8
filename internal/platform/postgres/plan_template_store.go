package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// PostgresPlanTemplateStore implements the store.PlanTemplateStore
// interface using a PostgreSQL database as the storage backend.
type PostgresPlanTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanTemplateStore creates a new PostgreSQL implementation of
// the PlanTemplateStore interface.
func NewPostgresPlanTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresPlanTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPlanTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "plan_template_store")),
	}
}

// Ensure PostgresPlanTemplateStore implements store.PlanTemplateStore interface
var _ store.PlanTemplateStore = (*PostgresPlanTemplateStore)(nil)

// ListActiveWeekly implements store.PlanTemplateStore.ListActiveWeekly
func (s *PostgresPlanTemplateStore) ListActiveWeekly(
	ctx context.Context,
) ([]*domain.WeeklyPlanTemplate, error) {
	query := `
		SELECT id, owner_id, title, description, frequency, times_per_week,
			evidence_type, evidence_criteria, default_deadline_hour, active,
			created_at
		FROM plan_templates
		WHERE active AND frequency = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.PlanFrequencyWeekly)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var templates []*domain.WeeklyPlanTemplate
	for rows.Next() {
		var (
			tpl              domain.WeeklyPlanTemplate
			description      sql.NullString
			timesPerWeek     sql.NullInt64
			evidenceType     sql.NullString
			evidenceCriteria sql.NullString
		)

		err := rows.Scan(
			&tpl.ID,
			&tpl.OwnerID,
			&tpl.Title,
			&description,
			&tpl.Frequency,
			&timesPerWeek,
			&evidenceType,
			&evidenceCriteria,
			&tpl.DefaultDeadlineHour,
			&tpl.Active,
			&tpl.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}

		tpl.Description = description.String
		tpl.TimesPerWeek = int(timesPerWeek.Int64)
		tpl.EvidenceType = evidenceType.String
		tpl.EvidenceCriteria = evidenceCriteria.String
		tpl.CreatedAt = tpl.CreatedAt.UTC()

		templates = append(templates, &tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return templates, nil
}
