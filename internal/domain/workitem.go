package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// WorkItemStatus represents the lifecycle state of a work item.
type WorkItemStatus string

// Possible work item status values.
//
// The engine itself only performs the OPEN -> OVERDUE transition (overdue
// sweep). EVIDENCE_SUBMITTED, DONE and EXCUSED are written by external
// evidence and exemption flows; DONE and EXCUSED are terminal as far as
// this engine is concerned.
const (
	WorkItemStatusOpen              WorkItemStatus = "OPEN"
	WorkItemStatusEvidenceSubmitted WorkItemStatus = "EVIDENCE_SUBMITTED"
	WorkItemStatusDone              WorkItemStatus = "DONE"
	WorkItemStatusExcused           WorkItemStatus = "EXCUSED"
	WorkItemStatusOverdue           WorkItemStatus = "OVERDUE"
)

// IsValid reports whether s is a recognized status value.
func (s WorkItemStatus) IsValid() bool {
	switch s {
	case WorkItemStatusOpen, WorkItemStatusEvidenceSubmitted, WorkItemStatusDone,
		WorkItemStatusExcused, WorkItemStatusOverdue:
		return true
	}
	return false
}

// Work-item-specific validation errors.
var (
	// ErrWorkItemIDEmpty is returned when a work item ID is empty or nil.
	ErrWorkItemIDEmpty = errors.New("work item ID cannot be empty")

	// ErrWorkItemOwnerIDEmpty is returned when a work item's owner ID is empty or nil.
	ErrWorkItemOwnerIDEmpty = errors.New("work item owner ID cannot be empty")

	// ErrWorkItemTitleEmpty is returned when a work item's title is empty.
	ErrWorkItemTitleEmpty = errors.New("work item title cannot be empty")

	// ErrWorkItemDateNotMidnight is returned when a generated-for date is
	// not aligned to midnight UTC.
	ErrWorkItemDateNotMidnight = errors.New("generated-for date must be midnight-aligned")
)

// WorkItem is a concrete, dated task. Items are created either by a
// generation pass from a template or manually by the user (in which case
// TemplateID and PlanTemplateID are both nil).
//
// Invariant: for any non-nil TemplateID, at most one work item exists per
// (TemplateID, GeneratedForDate). The partial unique index on the tasks
// table is the ultimate backstop for this; see internal/generation for the
// pre-check and reconciliation layers.
type WorkItem struct {
	ID          uuid.UUID      `json:"id"`
	OwnerID     uuid.UUID      `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      WorkItemStatus `json:"status"`

	// Evidence configuration, copied verbatim from the originating
	// template. Consumed by the external evidence-judgment flow.
	EvidenceType     string `json:"evidence_type,omitempty"`
	EvidenceCriteria string `json:"evidence_criteria,omitempty"`

	Deadline        *time.Time `json:"deadline,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	IsTimeBlocked   bool       `json:"is_time_blocked"`

	// TemplateID links a generated item to its recurrence template.
	// GeneratedForDate is the midnight-aligned date the item was generated
	// for; together they form the dedup key.
	TemplateID       *uuid.UUID `json:"template_id,omitempty"`
	GeneratedForDate *time.Time `json:"generated_for_date,omitempty"`

	// PlanTemplateID links a weekly-generated item to its plan template.
	// Weekly dedup is based on CreatedAt, not GeneratedForDate.
	PlanTemplateID *uuid.UUID `json:"plan_template_id,omitempty"`

	// ProjectID is set for items generated from cycle-bounded templates.
	ProjectID *uuid.UUID `json:"project_id,omitempty"`

	Tags []string `json:"tags,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Validate checks if the WorkItem has valid data.
// Returns an error if any field fails validation.
func (w *WorkItem) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWorkItemIDEmpty
	}

	if w.OwnerID == uuid.Nil {
		return ErrWorkItemOwnerIDEmpty
	}

	if w.Title == "" {
		return ErrWorkItemTitleEmpty
	}

	if !w.Status.IsValid() {
		return ErrInvalidStatus
	}

	if w.GeneratedForDate != nil {
		d := w.GeneratedForDate.UTC()
		if !d.Equal(Midnight(d)) {
			return ErrWorkItemDateNotMidnight
		}
	}

	return nil
}

// Midnight returns the civil date of t, observed in t's location, as
// midnight UTC. This is the canonical date-marker representation used for
// generated_for_date and all day-granularity comparisons.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring the time-of-day component. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}

// WeekStart returns the Monday 00:00:00 UTC of the week containing t.
// Exemption quotas are keyed on this date.
func WeekStart(t time.Time) time.Time {
	d := Midnight(t)
	return d.AddDate(0, 0, -MondayIndex(d.Weekday()))
}

// MondayIndex maps a time.Weekday to the Monday-based index used by
// recurrence templates and quota week math (Monday=0 .. Sunday=6).
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
