package generation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
)

// Kind tags attached to materialized items. Cosmetic labels surfaced in
// the client UI; the engine never branches on them.
const (
	tagHabit    = "习惯"
	tagLongTask = "长期任务"
)

// Materialize maps a recurrence template and a target instant to a fully
// populated work item draft for the instant's calendar day. Pure aside
// from ID generation: no I/O, no clock reads; day doubles as the creation
// timestamp.
//
// Field derivation:
//   - generated_for_date: day's civil date, midnight-aligned.
//   - scheduled_time: day at the template's start time, absent when no
//     start time is configured or it does not parse.
//   - deadline: day at the template's end time, else due time, else
//     23:59:59; always present. A configured but malformed end/due time
//     degrades to the fallback rather than failing the template.
//   - duration: minutes between scheduled time and deadline, only when
//     both exist and the difference is positive.
//   - is_time_blocked: whether a scheduled time was derived.
func Materialize(tpl *domain.RecurrenceTemplate, day time.Time) *domain.WorkItem {
	genDate := domain.Midnight(day)

	var scheduled *time.Time
	if !tpl.StartTime.IsZero() {
		if t, err := tpl.StartTime.On(day); err == nil {
			t = t.UTC()
			scheduled = &t
		}
	}

	deadline := fallbackDeadline(day)
	if end := firstConfigured(tpl.EndTime, tpl.DueTime); !end.IsZero() {
		if t, err := end.On(day); err == nil {
			deadline = t.UTC()
		}
	}

	var duration *int
	if scheduled != nil {
		if minutes := int(deadline.Sub(*scheduled) / time.Minute); minutes > 0 {
			duration = &minutes
		}
	}

	tag := tagHabit
	var projectID *uuid.UUID
	if tpl.Cycle != nil {
		tag = tagLongTask
		id := tpl.Cycle.ProjectID
		projectID = &id
	}

	now := day.UTC()
	return &domain.WorkItem{
		ID:               uuid.New(),
		OwnerID:          tpl.OwnerID,
		Title:            tpl.Title,
		Status:           domain.WorkItemStatusOpen,
		EvidenceType:     tpl.EvidenceType,
		EvidenceCriteria: tpl.EvidenceCriteria,
		Deadline:         &deadline,
		ScheduledTime:    scheduled,
		DurationMinutes:  duration,
		IsTimeBlocked:    scheduled != nil,
		TemplateID:       &tpl.ID,
		GeneratedForDate: &genDate,
		ProjectID:        projectID,
		Tags:             []string{tag},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// firstConfigured returns the first non-empty clock time. End time takes
// precedence over due time for the deadline.
func firstConfigured(times ...domain.ClockTime) domain.ClockTime {
	for _, t := range times {
		if !t.IsZero() {
			return t
		}
	}
	return ""
}

// fallbackDeadline is the end of day's calendar day, 23:59:59 in day's
// location.
func fallbackDeadline(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, day.Location()).UTC()
}
