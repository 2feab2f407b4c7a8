package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecurrenceMode selects how a template decides whether to fire on a
// given day.
type RecurrenceMode string

const (
	// RecurrenceInterval fires every IntervalDays calendar days.
	RecurrenceInterval RecurrenceMode = "interval"

	// RecurrenceSpecificWeekdays fires on a fixed set of weekdays.
	RecurrenceSpecificWeekdays RecurrenceMode = "specific_weekdays"
)

// IsValid reports whether m is a recognized recurrence mode.
func (m RecurrenceMode) IsValid() bool {
	return m == RecurrenceInterval || m == RecurrenceSpecificWeekdays
}

// WeekdaySet is a fixed-size set of weekdays, Monday-indexed (Monday=0,
// Sunday=6). The zero value is the empty set.
type WeekdaySet uint8

// NewWeekdaySet builds a set from Monday-based day indices. Indices
// outside 0..6 return ErrInvalidWeekday.
func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

// Contains reports whether the Monday-based day index is in the set.
// Out-of-range indices are never contained.
func (s WeekdaySet) Contains(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	return s&(1<<uint(day)) != 0
}

// ContainsWeekday reports whether the set contains the given time.Weekday.
func (s WeekdaySet) ContainsWeekday(d time.Weekday) bool {
	return s.Contains(MondayIndex(d))
}

// IsEmpty reports whether no weekday is set.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days returns the contained Monday-based day indices in ascending order.
func (s WeekdaySet) Days() []int {
	days := make([]int, 0, 7)
	for d := 0; d < 7; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set as a comma-separated list of day indices,
// e.g. "0,2,4" for Monday, Wednesday, Friday.
func (s WeekdaySet) String() string {
	parts := make([]string, 0, 7)
	for _, d := range s.Days() {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// ClockTime is a time-of-day stored as an "HH:MM" string, as entered
// through template CRUD. The empty string means "not configured".
//
// Parsing is deliberately deferred to the point of use: a malformed value
// on one template must degrade that template's materialization, never
// abort a batch.
type ClockTime string

// IsZero reports whether no time-of-day is configured.
func (c ClockTime) IsZero() bool {
	return c == ""
}

// Parse returns the hour and minute encoded in the value.
// Returns ErrInvalidClockTime for anything not of the form HH:MM.
func (c ClockTime) Parse() (hour, minute int, err error) {
	parts := strings.SplitN(string(c), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, string(c))
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, string(c))
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, string(c))
	}

	return hour, minute, nil
}

// On applies the time-of-day to the calendar day of t, preserving t's
// location. Returns an error for malformed values.
func (c ClockTime) On(t time.Time) (time.Time, error) {
	h, m, err := c.Parse()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), h, m, 0, 0, t.Location()), nil
}

// CycleBounds gates a template to a finite generation window. Present only
// on project-scoped, bounded-lifetime templates; nil for open-ended habits.
type CycleBounds struct {
	// ProjectID is the parent project whose lifecycle state gates
	// generation. The engine reads the state, it never writes it.
	ProjectID uuid.UUID `json:"project_id"`

	// StartedAt anchors day zero of the cycle.
	StartedAt time.Time `json:"started_at"`

	// TotalCycleDays is the width of the eligible window:
	// [StartedAt, StartedAt+TotalCycleDays) in calendar days.
	TotalCycleDays int `json:"total_cycle_days"`
}

// Template-specific validation errors.
var (
	ErrTemplateIDEmpty      = fmt.Errorf("%w: template ID cannot be empty", ErrValidation)
	ErrTemplateOwnerEmpty   = fmt.Errorf("%w: template owner ID cannot be empty", ErrValidation)
	ErrTemplateTitleEmpty   = fmt.Errorf("%w: template title cannot be empty", ErrValidation)
	ErrTemplateCycleInvalid = fmt.Errorf("%w: total cycle days must be positive", ErrValidation)
)

// RecurrenceTemplate is a declarative recurrence rule from which dated
// work items are generated. The open-ended habit and the project-scoped
// bounded task share this one shape; the bounded kind carries a non-nil
// Cycle.
type RecurrenceTemplate struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
	Enabled bool      `json:"enabled"`

	Mode         RecurrenceMode `json:"mode"`
	IntervalDays int            `json:"interval_days,omitempty"`
	Weekdays     WeekdaySet     `json:"weekdays,omitempty"`

	StartTime ClockTime `json:"start_time,omitempty"`
	EndTime   ClockTime `json:"end_time,omitempty"`
	DueTime   ClockTime `json:"due_time,omitempty"`

	EvidenceType     string `json:"evidence_type,omitempty"`
	EvidenceCriteria string `json:"evidence_criteria,omitempty"`

	Cycle *CycleBounds `json:"cycle,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bounded reports whether the template carries a finite cycle window.
func (t *RecurrenceTemplate) Bounded() bool {
	return t.Cycle != nil
}

// Validate checks if the RecurrenceTemplate has valid data.
func (t *RecurrenceTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTemplateIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTemplateOwnerEmpty
	}

	if t.Title == "" {
		return ErrTemplateTitleEmpty
	}

	if !t.Mode.IsValid() {
		return ErrInvalidRecurrenceMode
	}

	if t.Cycle != nil && t.Cycle.TotalCycleDays <= 0 {
		return ErrTemplateCycleInvalid
	}

	return nil
}
