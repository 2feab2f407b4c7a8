package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
)

// TemplateStore defines read access to recurrence templates. Template CRUD
// belongs to the external API layer; the engine only lists and resolves
// templates and reads the parent project's lifecycle gate.
type TemplateStore interface {
	// GetByID retrieves a recurrence template (either kind) by ID.
	// Returns ErrTemplateNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceTemplate, error)

	// ListEnabledHabits returns the owner's enabled open-ended habit
	// templates (no cycle bounds).
	ListEnabledHabits(ctx context.Context, ownerID uuid.UUID) ([]*domain.RecurrenceTemplate, error)

	// ListActiveBounded returns all cycle-bounded templates whose parent
	// project is in the ACTIVE lifecycle state, across owners.
	ListActiveBounded(ctx context.Context) ([]*domain.RecurrenceTemplate, error)

	// ProjectActive reports whether the project is in the ACTIVE lifecycle
	// state. The engine never writes project state.
	ProjectActive(ctx context.Context, projectID uuid.UUID) (bool, error)
}

// PlanTemplateStore defines read access to weekly plan templates.
type PlanTemplateStore interface {
	// ListActiveWeekly returns all active plan templates with weekly
	// frequency, across owners.
	ListActiveWeekly(ctx context.Context) ([]*domain.WeeklyPlanTemplate, error)
}
