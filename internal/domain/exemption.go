package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExemptionQuota is the per-owner, per-week exemption budget. The engine
// only reads it: the overdue sweep checks whether a day pass is active for
// the owner on the sweep date. All mutation happens in the external
// exemption-usage flow.
type ExemptionQuota struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`

	// WeekStart is always the Monday of the quota's week.
	WeekStart time.Time `json:"week_start"`

	DayPassTotal int `json:"day_pass_total"`
	DayPassUsed  int `json:"day_pass_used"`

	// DayPassDate is the date the day pass is active for, nil when unused.
	// A day pass is owner-wide: it pauses overdue judgment for every item
	// of the owner on that calendar day.
	DayPassDate *time.Time `json:"day_pass_date,omitempty"`

	RuleBreakTotal int `json:"rule_break_total"`
	RuleBreakUsed  int `json:"rule_break_used"`
}

// DayPassActiveOn reports whether the quota's day pass covers the
// calendar day of date.
func (q *ExemptionQuota) DayPassActiveOn(date time.Time) bool {
	if q == nil || q.DayPassDate == nil {
		return false
	}
	return Midnight(*q.DayPassDate).Equal(Midnight(date))
}
