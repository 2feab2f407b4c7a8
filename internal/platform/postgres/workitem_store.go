package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// workItemColumns is the select list shared by all work item queries, in
// scanWorkItem order.
const workItemColumns = `id, owner_id, title, description, status,
	evidence_type, evidence_criteria, deadline, scheduled_time,
	duration_minutes, is_time_blocked, template_id, generated_for_date,
	plan_template_id, project_id, tags, created_at, updated_at, completed_at`

// PostgresWorkItemStore implements the store.WorkItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWorkItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkItemStore creates a new PostgreSQL implementation of the
// WorkItemStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWorkItemStore(db store.DBTX, logger *slog.Logger) *PostgresWorkItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "work_item_store")),
	}
}

// Ensure PostgresWorkItemStore implements store.WorkItemStore interface
var _ store.WorkItemStore = (*PostgresWorkItemStore)(nil)

// WithTx implements store.WorkItemStore.WithTx
func (s *PostgresWorkItemStore) WithTx(tx *sql.Tx) store.WorkItemStore {
	return &PostgresWorkItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.WorkItemStore.Create
// A unique violation on the (template_id, generated_for_date) index maps
// to store.ErrDuplicate; callers treat that as a race, not a failure.
func (s *PostgresWorkItemStore) Create(ctx context.Context, item *domain.WorkItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("%w: failed to encode tags: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO work_items (` + workItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Status,
		item.EvidenceType,
		item.EvidenceCriteria,
		item.Deadline,
		item.ScheduledTime,
		item.DurationMinutes,
		item.IsTimeBlocked,
		item.TemplateID,
		item.GeneratedForDate,
		item.PlanTemplateID,
		item.ProjectID,
		tags,
		item.CreatedAt,
		item.UpdatedAt,
		item.CompletedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if !store.IsDuplicateError(mapped) {
			s.logger.Error("failed to create work item",
				slog.String("work_item_id", item.ID.String()),
				slog.String("error", err.Error()))
		}
		return mapped
	}

	return nil
}

// GetByID implements store.WorkItemStore.GetByID
func (s *PostgresWorkItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`

	item, err := scanWorkItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrWorkItemNotFound
		}
		return nil, MapError(err)
	}

	return item, nil
}

// GetGenerated implements store.WorkItemStore.GetGenerated
// The dedup-key lookup: date is compared against the midnight-aligned
// generated_for_date marker.
func (s *PostgresWorkItemStore) GetGenerated(
	ctx context.Context,
	templateID uuid.UUID,
	date time.Time,
) (*domain.WorkItem, error) {
	query := `
		SELECT ` + workItemColumns + `
		FROM work_items
		WHERE template_id = $1 AND generated_for_date = $2
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	item, err := scanWorkItem(s.db.QueryRowContext(ctx, query, templateID, domain.Midnight(date)))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrWorkItemNotFound
		}
		return nil, MapError(err)
	}

	return item, nil
}

// LatestGeneratedDate implements store.WorkItemStore.LatestGeneratedDate
func (s *PostgresWorkItemStore) LatestGeneratedDate(
	ctx context.Context,
	templateID uuid.UUID,
) (*time.Time, error) {
	query := `
		SELECT MAX(generated_for_date)
		FROM work_items
		WHERE template_id = $1
	`

	var latest sql.NullTime
	if err := s.db.QueryRowContext(ctx, query, templateID).Scan(&latest); err != nil {
		return nil, MapError(err)
	}

	if !latest.Valid {
		return nil, nil
	}

	t := latest.Time.UTC()
	return &t, nil
}

// ListGenerated implements store.WorkItemStore.ListGenerated
// The ordering matches the reconciliation survivor rule: earliest
// created_at first within a dedup key, id as the tie-break.
func (s *PostgresWorkItemStore) ListGenerated(
	ctx context.Context,
	templateID *uuid.UUID,
) ([]*domain.WorkItem, error) {
	query := `
		SELECT ` + workItemColumns + `
		FROM work_items
		WHERE template_id IS NOT NULL AND generated_for_date IS NOT NULL
	`
	args := []any{}
	if templateID != nil {
		query += ` AND template_id = $1`
		args = append(args, *templateID)
	}
	query += ` ORDER BY template_id ASC, generated_for_date ASC, created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectWorkItems(rows)
}

// Delete implements store.WorkItemStore.Delete
func (s *PostgresWorkItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "work item")
}

// ListExpiredOpen implements store.WorkItemStore.ListExpiredOpen
func (s *PostgresWorkItemStore) ListExpiredOpen(
	ctx context.Context,
	now time.Time,
) ([]*domain.WorkItem, error) {
	query := `
		SELECT ` + workItemColumns + `
		FROM work_items
		WHERE status = $1 AND deadline IS NOT NULL AND deadline < $2
		ORDER BY deadline ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.WorkItemStatusOpen, now)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectWorkItems(rows)
}

// UpdateStatus implements store.WorkItemStore.UpdateStatus
func (s *PostgresWorkItemStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.WorkItemStatus,
) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidStatus)
	}

	query := `
		UPDATE work_items
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "work item")
}

// ExistsForPlanTemplateSince implements store.WorkItemStore.ExistsForPlanTemplateSince
func (s *PostgresWorkItemStore) ExistsForPlanTemplateSince(
	ctx context.Context,
	planTemplateID uuid.UUID,
	since time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM work_items
			WHERE plan_template_id = $1 AND created_at >= $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, planTemplateID, since).Scan(&exists); err != nil {
		return false, MapError(err)
	}

	return exists, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanWorkItem.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkItem scans a single work item row in workItemColumns order.
func scanWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var (
		item             domain.WorkItem
		description      sql.NullString
		evidenceType     sql.NullString
		evidenceCriteria sql.NullString
		deadline         sql.NullTime
		scheduledTime    sql.NullTime
		duration         sql.NullInt64
		templateID       uuid.NullUUID
		generatedFor     sql.NullTime
		planTemplateID   uuid.NullUUID
		projectID        uuid.NullUUID
		tags             []byte
		completedAt      sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&description,
		&item.Status,
		&evidenceType,
		&evidenceCriteria,
		&deadline,
		&scheduledTime,
		&duration,
		&item.IsTimeBlocked,
		&templateID,
		&generatedFor,
		&planTemplateID,
		&projectID,
		&tags,
		&item.CreatedAt,
		&item.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.EvidenceType = evidenceType.String
	item.EvidenceCriteria = evidenceCriteria.String

	if deadline.Valid {
		t := deadline.Time.UTC()
		item.Deadline = &t
	}
	if scheduledTime.Valid {
		t := scheduledTime.Time.UTC()
		item.ScheduledTime = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		item.DurationMinutes = &d
	}
	if templateID.Valid {
		id := templateID.UUID
		item.TemplateID = &id
	}
	if generatedFor.Valid {
		t := generatedFor.Time.UTC()
		item.GeneratedForDate = &t
	}
	if planTemplateID.Valid {
		id := planTemplateID.UUID
		item.PlanTemplateID = &id
	}
	if projectID.Valid {
		id := projectID.UUID
		item.ProjectID = &id
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		item.CompletedAt = &t
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &item.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode work item tags: %w", err)
		}
	}

	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	return &item, nil
}

// collectWorkItems drains rows into a slice, surfacing row errors.
func collectWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}
