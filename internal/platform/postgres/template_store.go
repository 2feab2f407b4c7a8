package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

const templateColumns = `id, owner_id, title, enabled, mode, interval_days,
	weekdays, start_time, end_time, due_time, evidence_type,
	evidence_criteria, project_id, started_at, total_cycle_days,
	created_at, updated_at`

// PostgresTemplateStore implements the store.TemplateStore interface
// using a PostgreSQL database as the storage backend. The engine reads
// templates; template CRUD happens in the external API layer.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the
// TemplateStore interface.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// Ensure PostgresTemplateStore implements store.TemplateStore interface
var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

// GetByID implements store.TemplateStore.GetByID
func (s *PostgresTemplateStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.RecurrenceTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurrence_templates WHERE id = $1`

	tpl, err := scanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTemplateNotFound
		}
		return nil, MapError(err)
	}

	return tpl, nil
}

// ListEnabledHabits implements store.TemplateStore.ListEnabledHabits
// Habit templates are the unbounded kind: no project link, no cycle.
func (s *PostgresTemplateStore) ListEnabledHabits(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.RecurrenceTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurrence_templates
		WHERE owner_id = $1 AND enabled AND project_id IS NULL
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTemplates(rows)
}

// ListActiveBounded implements store.TemplateStore.ListActiveBounded
// Only templates whose parent project is ACTIVE are eligible to fire.
func (s *PostgresTemplateStore) ListActiveBounded(
	ctx context.Context,
) ([]*domain.RecurrenceTemplate, error) {
	query := `
		SELECT t.id, t.owner_id, t.title, t.enabled, t.mode, t.interval_days,
			t.weekdays, t.start_time, t.end_time, t.due_time, t.evidence_type,
			t.evidence_criteria, t.project_id, t.started_at, t.total_cycle_days,
			t.created_at, t.updated_at
		FROM recurrence_templates t
		JOIN projects p ON p.id = t.project_id
		WHERE t.enabled AND p.status = 'ACTIVE'
		ORDER BY t.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTemplates(rows)
}

// ProjectActive implements store.TemplateStore.ProjectActive
func (s *PostgresTemplateStore) ProjectActive(
	ctx context.Context,
	projectID uuid.UUID,
) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND status = 'ACTIVE')`

	var active bool
	if err := s.db.QueryRowContext(ctx, query, projectID).Scan(&active); err != nil {
		return false, MapError(err)
	}

	return active, nil
}

// scanTemplate scans a single recurrence template row in templateColumns
// order, assembling the optional cycle bounds from the project columns.
func scanTemplate(row rowScanner) (*domain.RecurrenceTemplate, error) {
	var (
		tpl              domain.RecurrenceTemplate
		intervalDays     sql.NullInt64
		weekdays         int64
		startTime        sql.NullString
		endTime          sql.NullString
		dueTime          sql.NullString
		evidenceType     sql.NullString
		evidenceCriteria sql.NullString
		projectID        uuid.NullUUID
		startedAt        sql.NullTime
		totalCycleDays   sql.NullInt64
	)

	err := row.Scan(
		&tpl.ID,
		&tpl.OwnerID,
		&tpl.Title,
		&tpl.Enabled,
		&tpl.Mode,
		&intervalDays,
		&weekdays,
		&startTime,
		&endTime,
		&dueTime,
		&evidenceType,
		&evidenceCriteria,
		&projectID,
		&startedAt,
		&totalCycleDays,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.IntervalDays = int(intervalDays.Int64)
	tpl.Weekdays = domain.WeekdaySet(weekdays)
	tpl.StartTime = domain.ClockTime(startTime.String)
	tpl.EndTime = domain.ClockTime(endTime.String)
	tpl.DueTime = domain.ClockTime(dueTime.String)
	tpl.EvidenceType = evidenceType.String
	tpl.EvidenceCriteria = evidenceCriteria.String

	if projectID.Valid && startedAt.Valid && totalCycleDays.Valid {
		tpl.Cycle = &domain.CycleBounds{
			ProjectID:      projectID.UUID,
			StartedAt:      startedAt.Time.UTC(),
			TotalCycleDays: int(totalCycleDays.Int64),
		}
	}

	tpl.CreatedAt = tpl.CreatedAt.UTC()
	tpl.UpdatedAt = tpl.UpdatedAt.UTC()

	return &tpl, nil
}

func collectTemplates(rows *sql.Rows) ([]*domain.RecurrenceTemplate, error) {
	var templates []*domain.RecurrenceTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, MapError(err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return templates, nil
}
