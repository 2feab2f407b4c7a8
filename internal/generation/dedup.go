package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/store"
)

// Reconciler repairs violations of the at-most-one-item-per-(template,
// date) invariant by collapsing every duplicate group down to a single
// survivor: the earliest-created item, lowest ID as the tie-break.
//
// It runs before each per-template generation attempt, once globally
// before a full batch run, and immediately after a uniqueness violation
// is caught on insert. Conflicting writes are expected under concurrent
// callers, so finding duplicates is handled as repair work, not as an
// error.
type Reconciler struct {
	items  store.WorkItemStore
	logger *slog.Logger
}

// NewReconciler creates a Reconciler over the given work item store.
// If logger is nil, a default logger will be used.
func NewReconciler(items store.WorkItemStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		items:  items,
		logger: logger.With(slog.String("component", "dedup_reconciler")),
	}
}

// Reconcile scans generated work items, restricted to one template when
// templateID is non-nil, and deletes every item beyond the first of each
// (template_id, generated_for_date) group. The store returns items
// ordered by dedup key, then created_at, then ID, so the first of a group
// is always the designated survivor. Returns the number of deleted
// duplicates.
func (r *Reconciler) Reconcile(ctx context.Context, templateID *uuid.UUID) (int, error) {
	items, err := r.items.ListGenerated(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("failed to list generated work items: %w", err)
	}

	type dedupKey struct {
		templateID uuid.UUID
		date       time.Time
	}

	seen := make(map[dedupKey]bool)
	deleted := 0

	for _, item := range items {
		key := dedupKey{
			templateID: *item.TemplateID,
			date:       item.GeneratedForDate.UTC(),
		}
		if !seen[key] {
			seen[key] = true
			continue
		}

		if err := r.items.Delete(ctx, item.ID); err != nil {
			// Another reconciler may have deleted it first; that is the
			// outcome we wanted.
			if store.IsNotFoundError(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete duplicate work item %s: %w", item.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		r.logger.Warn("collapsed duplicate generated work items",
			slog.Int("deleted", deleted))
	}

	return deleted, nil
}
