package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
)

// WorkItemStore defines the interface for work item persistence.
type WorkItemStore interface {
	// Create saves a new work item.
	// Returns ErrDuplicate (via the uniqueness constraint on
	// (template_id, generated_for_date)) when a concurrent caller already
	// generated the same item; callers are expected to treat that as a
	// normal skip, roll back, and reconcile.
	// Returns ErrInvalidEntity wrapping the validation error for invalid items.
	Create(ctx context.Context, item *domain.WorkItem) error

	// GetByID retrieves a work item by its unique ID.
	// Returns ErrWorkItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)

	// GetGenerated retrieves the work item generated from the given
	// template for the given (midnight-aligned) date, i.e. a dedup-key
	// lookup. Returns ErrWorkItemNotFound if none exists.
	GetGenerated(ctx context.Context, templateID uuid.UUID, date time.Time) (*domain.WorkItem, error)

	// LatestGeneratedDate returns the most recent generated_for_date among
	// items linked to the template, or nil when the template never fired.
	// Ordering is by generation date, not creation time, since creation
	// time can lag the generation date under retries.
	LatestGeneratedDate(ctx context.Context, templateID uuid.UUID) (*time.Time, error)

	// ListGenerated returns all template-generated work items, optionally
	// restricted to one template, ordered by (template_id,
	// generated_for_date, created_at, id) ascending. This is the input to
	// duplicate reconciliation.
	ListGenerated(ctx context.Context, templateID *uuid.UUID) ([]*domain.WorkItem, error)

	// Delete removes a work item by ID. Only duplicate reconciliation
	// deletes items on behalf of the engine.
	// Returns ErrWorkItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListExpiredOpen returns items with status OPEN, a non-null deadline,
	// and deadline < now. Input to the overdue sweep.
	ListExpiredOpen(ctx context.Context, now time.Time) ([]*domain.WorkItem, error)

	// UpdateStatus sets the status of a work item.
	// Returns ErrWorkItemNotFound if the item does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WorkItemStatus) error

	// ExistsForPlanTemplateSince reports whether any work item linked to
	// the weekly plan template was created on or after the given instant.
	// The weekly generator's week-level dedup check.
	ExistsForPlanTemplateSince(ctx context.Context, planTemplateID uuid.UUID, since time.Time) (bool, error)

	// WithTx returns a WorkItemStore bound to the provided transaction,
	// for use with RunInTransaction.
	WithTx(tx *sql.Tx) WorkItemStore
}
