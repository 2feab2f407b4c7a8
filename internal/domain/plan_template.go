package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PlanFrequency is the cadence of a weekly plan template.
type PlanFrequency string

const (
	PlanFrequencyDaily  PlanFrequency = "daily"
	PlanFrequencyWeekly PlanFrequency = "weekly"
)

// Plan-template-specific validation errors.
var (
	ErrPlanTemplateIDEmpty       = errors.New("plan template ID cannot be empty")
	ErrPlanTemplateOwnerEmpty    = errors.New("plan template owner ID cannot be empty")
	ErrPlanTemplateTitleEmpty    = errors.New("plan template title cannot be empty")
	ErrPlanTemplateBadFrequency  = errors.New("plan template frequency must be daily or weekly")
	ErrPlanTemplateDeadlineHour  = errors.New("plan template deadline hour must be in 0..23")
	ErrPlanTemplateTimesPerWeek  = errors.New("plan template times per week must be positive")
)

// WeeklyPlanTemplate is the coarser-cadence template consumed by the
// weekly generator. Unlike recurrence templates it carries no dedup date
// marker: "already generated this week" is judged from the creation time
// of linked work items.
type WeeklyPlanTemplate struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Frequency   PlanFrequency `json:"frequency"`

	// TimesPerWeek is how many items one weekly run creates. Zero is
	// treated as one by the generator.
	TimesPerWeek int `json:"times_per_week,omitempty"`

	EvidenceType     string `json:"evidence_type,omitempty"`
	EvidenceCriteria string `json:"evidence_criteria,omitempty"`

	// DefaultDeadlineHour deadlines generated items at HH:59:59 of the
	// generation day.
	DefaultDeadlineHour int `json:"default_deadline_hour"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the WeeklyPlanTemplate has valid data.
func (t *WeeklyPlanTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrPlanTemplateIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrPlanTemplateOwnerEmpty
	}

	if t.Title == "" {
		return ErrPlanTemplateTitleEmpty
	}

	if t.Frequency != PlanFrequencyDaily && t.Frequency != PlanFrequencyWeekly {
		return ErrPlanTemplateBadFrequency
	}

	if t.DefaultDeadlineHour < 0 || t.DefaultDeadlineHour > 23 {
		return ErrPlanTemplateDeadlineHour
	}

	if t.TimesPerWeek < 0 {
		return ErrPlanTemplateTimesPerWeek
	}

	return nil
}
