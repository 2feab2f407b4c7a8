package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// Generator runs the daily generation passes over recurrence templates.
// It is safe to invoke from multiple processes concurrently: ordering
// between replicas is never assumed, and duplicate generation attempts
// resolve through the dedup pre-check, the storage uniqueness constraint,
// and reconciliation.
type Generator struct {
	items     store.WorkItemStore
	templates store.TemplateStore
	recon     *Reconciler
	logger    *slog.Logger
	now       func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the generator's clock. Tests use this to simulate
// specific days.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator over the given stores.
// If logger is nil, a default logger will be used.
func NewGenerator(
	items store.WorkItemStore,
	templates store.TemplateStore,
	logger *slog.Logger,
	opts ...GeneratorOption,
) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Generator{
		items:     items,
		templates: templates,
		recon:     NewReconciler(items, logger),
		logger:    logger.With(slog.String("component", "generator")),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GenerateDailyHabits generates today's work items from the owner's
// enabled habit templates. Invoked by the owner's daily trigger; safe to
// call repeatedly within a day. Returns the number of items created.
func (g *Generator) GenerateDailyHabits(ctx context.Context, ownerID uuid.UUID) (int, error) {
	today := g.now()

	// Global repair pass before the batch.
	if _, err := g.recon.Reconcile(ctx, nil); err != nil {
		return 0, err
	}

	templates, err := g.templates.ListEnabledHabits(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list habit templates: %w", err)
	}

	return g.generateBatch(ctx, templates, today), nil
}

// GenerateDailyLongTasks generates today's work items from every
// cycle-bounded template whose parent project is ACTIVE, across owners.
// Returns the number of items created.
func (g *Generator) GenerateDailyLongTasks(ctx context.Context) (int, error) {
	today := g.now()

	if _, err := g.recon.Reconcile(ctx, nil); err != nil {
		return 0, err
	}

	templates, err := g.templates.ListActiveBounded(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list bounded templates: %w", err)
	}

	return g.generateBatch(ctx, templates, today), nil
}

// GenerateNow is the immediate-fire hook invoked right after template
// creation or project activation. For cycle-bounded templates it refuses
// quietly unless the parent project is ACTIVE. Returns the number of
// items created (0 or 1).
func (g *Generator) GenerateNow(ctx context.Context, templateID uuid.UUID) (int, error) {
	tpl, err := g.templates.GetByID(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("failed to load template: %w", err)
	}

	if !tpl.Enabled {
		return 0, nil
	}

	if tpl.Bounded() {
		active, err := g.templates.ProjectActive(ctx, tpl.Cycle.ProjectID)
		if err != nil {
			return 0, fmt.Errorf("failed to read project state: %w", err)
		}
		if !active {
			return 0, nil
		}
	}

	return g.generateForTemplate(ctx, tpl, g.now())
}

// generateBatch runs the per-template pass over templates. One template's
// failure is logged and never prevents generation for the others.
func (g *Generator) generateBatch(
	ctx context.Context,
	templates []*domain.RecurrenceTemplate,
	today time.Time,
) int {
	created := 0
	for _, tpl := range templates {
		n, err := g.generateForTemplate(ctx, tpl, today)
		if err != nil {
			g.logger.Error("generation failed for template, continuing batch",
				slog.String("template_id", tpl.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		created += n
	}
	return created
}

// generateForTemplate runs the full per-template sequence: reconcile,
// cycle boundary, recurrence evaluation, dedup pre-check, materialize,
// persist, and post-insert reconcile.
func (g *Generator) generateForTemplate(
	ctx context.Context,
	tpl *domain.RecurrenceTemplate,
	today time.Time,
) (int, error) {
	if _, err := g.recon.Reconcile(ctx, &tpl.ID); err != nil {
		return 0, err
	}

	if !WithinCycle(tpl.Cycle, today) {
		return 0, nil
	}

	// Last-fired derivation is only needed for multi-day intervals; the
	// other modes decide from today alone.
	var lastFired *time.Time
	if tpl.Mode == domain.RecurrenceInterval && tpl.IntervalDays > 1 {
		var err error
		lastFired, err = g.items.LatestGeneratedDate(ctx, tpl.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to derive last fired date: %w", err)
		}
	}

	if !ShouldFire(tpl, today, lastFired) {
		return 0, nil
	}

	// Dedup pre-check. A hit means some caller already generated today's
	// item; skip without error.
	_, err := g.items.GetGenerated(ctx, tpl.ID, today)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, store.ErrWorkItemNotFound) {
		return 0, fmt.Errorf("dedup pre-check failed: %w", err)
	}

	item := Materialize(tpl, today)
	if err := g.items.Create(ctx, item); err != nil {
		// A uniqueness violation is the expected race outcome: another
		// caller inserted between our pre-check and insert. Repair and
		// report zero created.
		if store.IsDuplicateError(err) {
			g.logger.Info("lost generation race, reconciling",
				slog.String("template_id", tpl.ID.String()),
				slog.Time("date", domain.Midnight(today)))
			if _, rerr := g.recon.Reconcile(ctx, &tpl.ID); rerr != nil {
				return 0, rerr
			}
			return 0, nil
		}
		return 0, fmt.Errorf("failed to persist generated work item: %w", err)
	}

	// Final guard in case a concurrent writer slipped in before our
	// insert landed.
	if _, err := g.recon.Reconcile(ctx, &tpl.ID); err != nil {
		return 1, err
	}

	return 1, nil
}
