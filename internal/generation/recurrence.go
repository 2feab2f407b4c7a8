package generation

import (
	"time"

	"github.com/rfoster/cadence/internal/domain"
)

// ShouldFire decides whether a recurrence template fires on the calendar
// day of today. Pure: all inputs are explicit, no I/O.
//
// Interval mode fires unconditionally for intervals of one day or less,
// otherwise when the template never fired before or at least IntervalDays
// whole days passed since the last generation date. lastFired is the most
// recent generated_for_date among the template's items, nil when none
// exists; callers must derive it from the generation-date marker, not
// from creation time, which can lag under retries.
//
// Specific-weekday mode fires when today's weekday is in the template's
// set (Monday-indexed).
func ShouldFire(tpl *domain.RecurrenceTemplate, today time.Time, lastFired *time.Time) bool {
	switch tpl.Mode {
	case domain.RecurrenceSpecificWeekdays:
		return tpl.Weekdays.ContainsWeekday(today.Weekday())

	case domain.RecurrenceInterval:
		if tpl.IntervalDays <= 1 {
			return true
		}
		if lastFired == nil {
			return true
		}
		return domain.DaysBetween(*lastFired, today) >= tpl.IntervalDays
	}

	return false
}

// WithinCycle gates cycle-bounded templates to their finite generation
// window [StartedAt, StartedAt+TotalCycleDays) in whole calendar days.
// Day zero is always within the window. A nil cycle (open-ended habit)
// is always eligible.
func WithinCycle(cycle *domain.CycleBounds, today time.Time) bool {
	if cycle == nil {
		return true
	}
	return domain.DaysBetween(cycle.StartedAt, today) < cycle.TotalCycleDays
}
