package generation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/cadence/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestShouldFireInterval(t *testing.T) {
	tpl := &domain.RecurrenceTemplate{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Title:        "Stretch",
		Mode:         domain.RecurrenceInterval,
		IntervalDays: 1,
	}

	t.Run("daily interval always fires", func(t *testing.T) {
		last := day(2026, 2, 9)
		assert.True(t, ShouldFire(tpl, day(2026, 2, 10), &last))
		assert.True(t, ShouldFire(tpl, day(2026, 2, 10), nil))
	})

	t.Run("zero interval treated as daily", func(t *testing.T) {
		cp := *tpl
		cp.IntervalDays = 0
		assert.True(t, ShouldFire(&cp, day(2026, 2, 10), nil))
	})
}

func TestShouldFireMultiDayInterval(t *testing.T) {
	tpl := &domain.RecurrenceTemplate{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Title:        "Deep clean",
		Mode:         domain.RecurrenceInterval,
		IntervalDays: 3,
	}

	t.Run("fires when never fired before", func(t *testing.T) {
		assert.True(t, ShouldFire(tpl, day(2026, 2, 10), nil))
	})

	t.Run("waits out the interval", func(t *testing.T) {
		last := day(2026, 2, 10)
		assert.False(t, ShouldFire(tpl, day(2026, 2, 11), &last), "one day elapsed")
		assert.False(t, ShouldFire(tpl, day(2026, 2, 12), &last), "two days elapsed")
		assert.True(t, ShouldFire(tpl, day(2026, 2, 13), &last), "three days elapsed")
		assert.True(t, ShouldFire(tpl, day(2026, 2, 20), &last), "well past the interval")
	})

	t.Run("same day does not refire", func(t *testing.T) {
		last := day(2026, 2, 10)
		assert.False(t, ShouldFire(tpl, day(2026, 2, 10), &last))
	})
}

func TestShouldFireSpecificWeekdays(t *testing.T) {
	weekdays, err := domain.NewWeekdaySet(0, 2, 4) // Mon, Wed, Fri
	require.NoError(t, err)

	tpl := &domain.RecurrenceTemplate{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Title:    "Gym",
		Mode:     domain.RecurrenceSpecificWeekdays,
		Weekdays: weekdays,
	}

	// 2026-02-09 is a Monday.
	week := []struct {
		date time.Time
		want bool
	}{
		{day(2026, 2, 9), true},   // Mon
		{day(2026, 2, 10), false}, // Tue
		{day(2026, 2, 11), true},  // Wed
		{day(2026, 2, 12), false}, // Thu
		{day(2026, 2, 13), true},  // Fri
		{day(2026, 2, 14), false}, // Sat
		{day(2026, 2, 15), false}, // Sun
	}

	for _, tt := range week {
		assert.Equal(t, tt.want, ShouldFire(tpl, tt.date, nil),
			"date %s (%s)", tt.date.Format("2006-01-02"), tt.date.Weekday())
	}

	t.Run("last fired date is irrelevant", func(t *testing.T) {
		last := day(2026, 2, 9)
		assert.True(t, ShouldFire(tpl, day(2026, 2, 11), &last))
	})

	t.Run("empty set never fires", func(t *testing.T) {
		cp := *tpl
		cp.Weekdays = 0
		for _, tt := range week {
			assert.False(t, ShouldFire(&cp, tt.date, nil))
		}
	})
}

func TestShouldFireUnknownMode(t *testing.T) {
	tpl := &domain.RecurrenceTemplate{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Broken",
		Mode:    "monthly",
	}
	assert.False(t, ShouldFire(tpl, day(2026, 2, 10), nil))
}

func TestWithinCycle(t *testing.T) {
	t.Run("nil cycle is always eligible", func(t *testing.T) {
		assert.True(t, WithinCycle(nil, day(2026, 2, 10)))
	})

	cycle := &domain.CycleBounds{
		ProjectID:      uuid.New(),
		StartedAt:      day(2026, 2, 10),
		TotalCycleDays: 5,
	}

	t.Run("day zero is within the window", func(t *testing.T) {
		assert.True(t, WithinCycle(cycle, day(2026, 2, 10)))
	})

	t.Run("last eligible day is start plus width minus one", func(t *testing.T) {
		assert.True(t, WithinCycle(cycle, day(2026, 2, 14)))
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		assert.False(t, WithinCycle(cycle, day(2026, 2, 15)))
		assert.False(t, WithinCycle(cycle, day(2026, 3, 1)))
	})

	t.Run("before the window start", func(t *testing.T) {
		// DaysBetween is negative here, which is below the width.
		assert.True(t, WithinCycle(cycle, day(2026, 2, 9)))
	})

	t.Run("time of day does not shift the boundary", func(t *testing.T) {
		lateOnLastDay := time.Date(2026, 2, 14, 23, 59, 0, 0, time.UTC)
		justIntoDayFive := time.Date(2026, 2, 15, 0, 1, 0, 0, time.UTC)
		assert.True(t, WithinCycle(cycle, lateOnLastDay))
		assert.False(t, WithinCycle(cycle, justIntoDayFive))
	})
}
