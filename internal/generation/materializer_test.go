package generation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/cadence/internal/domain"
)

func TestMaterializeFullTemplate(t *testing.T) {
	tpl := &domain.RecurrenceTemplate{
		ID:               uuid.New(),
		OwnerID:          uuid.New(),
		Title:            "Morning run",
		Enabled:          true,
		Mode:             domain.RecurrenceInterval,
		IntervalDays:     1,
		StartTime:        "07:00",
		EndTime:          "07:30",
		EvidenceType:     "photo",
		EvidenceCriteria: "a photo of the route",
	}

	target := time.Date(2026, 2, 10, 0, 5, 0, 0, time.UTC)
	item := Materialize(tpl, target)

	require.NoError(t, item.Validate())
	assert.Equal(t, tpl.OwnerID, item.OwnerID)
	assert.Equal(t, tpl.Title, item.Title)
	assert.Equal(t, domain.WorkItemStatusOpen, item.Status)
	assert.Equal(t, tpl.EvidenceType, item.EvidenceType)
	assert.Equal(t, tpl.EvidenceCriteria, item.EvidenceCriteria)

	require.NotNil(t, item.TemplateID)
	assert.Equal(t, tpl.ID, *item.TemplateID)

	require.NotNil(t, item.GeneratedForDate)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), *item.GeneratedForDate)

	require.NotNil(t, item.ScheduledTime)
	assert.Equal(t, time.Date(2026, 2, 10, 7, 0, 0, 0, time.UTC), item.ScheduledTime.UTC())

	require.NotNil(t, item.Deadline)
	assert.Equal(t, time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC), item.Deadline.UTC())

	require.NotNil(t, item.DurationMinutes)
	assert.Equal(t, 30, *item.DurationMinutes)

	assert.True(t, item.IsTimeBlocked)
	assert.Equal(t, []string{"习惯"}, item.Tags)
	assert.Nil(t, item.ProjectID)
}

func TestMaterializeDeadlinePrecedence(t *testing.T) {
	base := domain.RecurrenceTemplate{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Journal",
		Mode:    domain.RecurrenceInterval,
	}
	target := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("end time wins over due time", func(t *testing.T) {
		tpl := base
		tpl.EndTime = "18:00"
		tpl.DueTime = "21:00"
		item := Materialize(&tpl, target)
		assert.Equal(t, time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC), item.Deadline.UTC())
	})

	t.Run("due time used when no end time", func(t *testing.T) {
		tpl := base
		tpl.DueTime = "21:00"
		item := Materialize(&tpl, target)
		assert.Equal(t, time.Date(2026, 2, 10, 21, 0, 0, 0, time.UTC), item.Deadline.UTC())
	})

	t.Run("falls back to end of day", func(t *testing.T) {
		tpl := base
		item := Materialize(&tpl, target)
		assert.Equal(t, time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC), item.Deadline.UTC())
	})

	t.Run("malformed end time degrades to fallback", func(t *testing.T) {
		tpl := base
		tpl.EndTime = "25:99"
		item := Materialize(&tpl, target)
		require.NotNil(t, item.Deadline)
		assert.Equal(t, time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC), item.Deadline.UTC())
	})
}

func TestMaterializeScheduledTime(t *testing.T) {
	base := domain.RecurrenceTemplate{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Review notes",
		Mode:    domain.RecurrenceInterval,
	}
	target := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("absent without a start time", func(t *testing.T) {
		tpl := base
		item := Materialize(&tpl, target)
		assert.Nil(t, item.ScheduledTime)
		assert.Nil(t, item.DurationMinutes)
		assert.False(t, item.IsTimeBlocked)
	})

	t.Run("malformed start time degrades without failing", func(t *testing.T) {
		tpl := base
		tpl.StartTime = "seven"
		item := Materialize(&tpl, target)
		assert.Nil(t, item.ScheduledTime)
		assert.False(t, item.IsTimeBlocked)
		require.NoError(t, item.Validate())
	})

	t.Run("no duration when deadline precedes start", func(t *testing.T) {
		tpl := base
		tpl.StartTime = "22:00"
		tpl.EndTime = "06:00"
		item := Materialize(&tpl, target)
		require.NotNil(t, item.ScheduledTime)
		assert.Nil(t, item.DurationMinutes)
	})
}

func TestMaterializeBoundedTemplate(t *testing.T) {
	projectID := uuid.New()
	tpl := &domain.RecurrenceTemplate{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Ship weekly build",
		Mode:    domain.RecurrenceInterval,
		Cycle: &domain.CycleBounds{
			ProjectID:      projectID,
			StartedAt:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			TotalCycleDays: 30,
		},
	}

	item := Materialize(tpl, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	require.NotNil(t, item.ProjectID)
	assert.Equal(t, projectID, *item.ProjectID)
	assert.Equal(t, []string{"长期任务"}, item.Tags)
}
