package generation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/mocks"
)

var testZone = time.FixedZone("UTC+8", 8*60*60)

// Monday 2026-02-09 00:05 local, the minute after the weekly cron fires.
var weeklyRunTime = time.Date(2026, 2, 9, 0, 5, 0, 0, testZone)

func weeklyPlan(title string, times int) *domain.WeeklyPlanTemplate {
	return &domain.WeeklyPlanTemplate{
		ID:                  uuid.New(),
		OwnerID:             uuid.New(),
		Title:               title,
		Frequency:           domain.PlanFrequencyWeekly,
		TimesPerWeek:        times,
		DefaultDeadlineHour: 21,
		Active:              true,
		CreatedAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newWeeklyUnderTest(
	items *mocks.MemWorkItemStore,
	plans *mocks.MemPlanTemplateStore,
	locks *mocks.MemJobLockStore,
	holder string,
) *WeeklyGenerator {
	return NewWeeklyGenerator(
		items, plans, locks,
		testZone, 10*time.Minute, holder, nil,
		WithWeeklyClock(fixedClock(weeklyRunTime)),
	)
}

func TestWeeklyGeneratorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("single occurrence carries the week identifier", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		tpl := weeklyPlan("Weekly review", 1)
		plans.Put(tpl)

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		all := items.All()
		require.Len(t, all, 1)
		item := all[0]
		// 2026-02-09 is the Monday of ISO week 7.
		assert.Equal(t, "Weekly review (W2026-07)", item.Title)
		require.NotNil(t, item.PlanTemplateID)
		assert.Equal(t, tpl.ID, *item.PlanTemplateID)
		assert.Nil(t, item.TemplateID)
		assert.Nil(t, item.GeneratedForDate)
		assert.Equal(t, domain.WorkItemStatusOpen, item.Status)
	})

	t.Run("multiple occurrences are indexed", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		plans.Put(weeklyPlan("Gym session", 3))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, created)

		titles := make(map[string]bool)
		for _, item := range items.All() {
			titles[item.Title] = true
		}
		assert.True(t, titles["Gym session 1/3 (W2026-07)"])
		assert.True(t, titles["Gym session 2/3 (W2026-07)"])
		assert.True(t, titles["Gym session 3/3 (W2026-07)"])
	})

	t.Run("zero times per week still creates one", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		plans.Put(weeklyPlan("Default cadence", 0))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
	})

	t.Run("deadline is the configured hour of the run day", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		plans.Put(weeklyPlan("Weekly review", 1))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		_, err := w.Run(ctx)
		require.NoError(t, err)

		all := items.All()
		require.Len(t, all, 1)
		require.NotNil(t, all[0].Deadline)
		want := time.Date(2026, 2, 9, 21, 59, 59, 0, testZone)
		assert.True(t, all[0].Deadline.Equal(want),
			"deadline = %v, want %v", all[0].Deadline, want)
	})

	t.Run("inactive templates are skipped", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		tpl := weeklyPlan("Retired plan", 1)
		tpl.Active = false
		plans.Put(tpl)

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestWeeklyGeneratorDedup(t *testing.T) {
	ctx := context.Background()

	seedLinked := func(items *mocks.MemWorkItemStore, planID uuid.UUID, createdAt time.Time) {
		items.Put(&domain.WorkItem{
			ID:             uuid.New(),
			OwnerID:        uuid.New(),
			Title:          "already there",
			Status:         domain.WorkItemStatusOpen,
			PlanTemplateID: &planID,
			CreatedAt:      createdAt.UTC(),
			UpdatedAt:      createdAt.UTC(),
		})
	}

	t.Run("skips when an item exists from this week", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		tpl := weeklyPlan("Weekly review", 1)
		plans.Put(tpl)

		// Created one minute after Monday 00:00 local.
		seedLinked(items, tpl.ID, time.Date(2026, 2, 9, 0, 1, 0, 0, testZone))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Len(t, items.All(), 1)
	})

	t.Run("last week's items do not block this week", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		tpl := weeklyPlan("Weekly review", 1)
		plans.Put(tpl)

		// Sunday 23:50 local, ten minutes before the week boundary.
		seedLinked(items, tpl.ID, time.Date(2026, 2, 8, 23, 50, 0, 0, testZone))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
		assert.Len(t, items.All(), 2)
	})

	t.Run("second run the same week is a noop", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		plans.Put(weeklyPlan("Weekly review", 2))

		w := newWeeklyUnderTest(items, plans, locks, "host_1")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, created)

		created, err = w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Len(t, items.All(), 2)
	})
}

func TestWeeklyGeneratorLocking(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when another holder owns the lock", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		locks.Now = fixedClock(weeklyRunTime)
		plans.Put(weeklyPlan("Weekly review", 1))

		acquired, err := locks.Acquire(ctx, JobWeeklyGeneration, "other_host", 10*time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		w := newWeeklyUnderTest(items, plans, locks, "this_host")
		created, err := w.Run(ctx)
		require.NoError(t, err, "a held lock is a skip, not a failure")
		assert.Equal(t, 0, created)
		assert.Empty(t, items.All())
	})

	t.Run("holder re-acquisition extends and proceeds", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		locks.Now = fixedClock(weeklyRunTime)
		plans.Put(weeklyPlan("Weekly review", 1))

		acquired, err := locks.Acquire(ctx, JobWeeklyGeneration, "this_host", 10*time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		w := newWeeklyUnderTest(items, plans, locks, "this_host")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
	})

	t.Run("expired lock is stolen", func(t *testing.T) {
		items := mocks.NewMemWorkItemStore()
		plans := mocks.NewMemPlanTemplateStore()
		locks := mocks.NewMemJobLockStore()
		plans.Put(weeklyPlan("Weekly review", 1))

		// The other holder's lock expired well before this run.
		locks.Now = fixedClock(weeklyRunTime.Add(-time.Hour))
		acquired, err := locks.Acquire(ctx, JobWeeklyGeneration, "other_host", 10*time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		locks.Now = fixedClock(weeklyRunTime)
		w := newWeeklyUnderTest(items, plans, locks, "this_host")
		created, err := w.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		lock := locks.Lock(JobWeeklyGeneration)
		require.NotNil(t, lock)
		assert.Equal(t, "this_host", lock.LockedBy)
	})
}
