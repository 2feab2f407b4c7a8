package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWorkItemValidate(t *testing.T) {
	valid := func() *WorkItem {
		return &WorkItem{
			ID:      uuid.New(),
			OwnerID: uuid.New(),
			Title:   "Morning run",
			Status:  WorkItemStatusOpen,
		}
	}

	t.Run("valid item passes", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("expected valid work item, got error: %v", err)
		}
	})

	t.Run("empty ID fails", func(t *testing.T) {
		item := valid()
		item.ID = uuid.Nil
		if err := item.Validate(); !errors.Is(err, ErrWorkItemIDEmpty) {
			t.Errorf("expected ErrWorkItemIDEmpty, got: %v", err)
		}
	})

	t.Run("empty owner fails", func(t *testing.T) {
		item := valid()
		item.OwnerID = uuid.Nil
		if err := item.Validate(); !errors.Is(err, ErrWorkItemOwnerIDEmpty) {
			t.Errorf("expected ErrWorkItemOwnerIDEmpty, got: %v", err)
		}
	})

	t.Run("empty title fails", func(t *testing.T) {
		item := valid()
		item.Title = ""
		if err := item.Validate(); !errors.Is(err, ErrWorkItemTitleEmpty) {
			t.Errorf("expected ErrWorkItemTitleEmpty, got: %v", err)
		}
	})

	t.Run("unknown status fails", func(t *testing.T) {
		item := valid()
		item.Status = "PENDING"
		if err := item.Validate(); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got: %v", err)
		}
	})

	t.Run("misaligned generated-for date fails", func(t *testing.T) {
		item := valid()
		d := time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC)
		item.GeneratedForDate = &d
		if err := item.Validate(); !errors.Is(err, ErrWorkItemDateNotMidnight) {
			t.Errorf("expected ErrWorkItemDateNotMidnight, got: %v", err)
		}
	})

	t.Run("midnight generated-for date passes", func(t *testing.T) {
		item := valid()
		d := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		item.GeneratedForDate = &d
		if err := item.Validate(); err != nil {
			t.Errorf("expected valid work item, got error: %v", err)
		}
	})
}

func TestWorkItemStatusIsValid(t *testing.T) {
	for _, s := range []WorkItemStatus{
		WorkItemStatusOpen,
		WorkItemStatusEvidenceSubmitted,
		WorkItemStatusDone,
		WorkItemStatusExcused,
		WorkItemStatusOverdue,
	} {
		if !s.IsValid() {
			t.Errorf("expected status %q to be valid", s)
		}
	}

	for _, s := range []WorkItemStatus{"", "open", "CANCELLED"} {
		if s.IsValid() {
			t.Errorf("expected status %q to be invalid", s)
		}
	}
}

func TestMidnight(t *testing.T) {
	t.Run("UTC instant truncates to its UTC day", func(t *testing.T) {
		got := Midnight(time.Date(2026, 2, 10, 23, 45, 1, 500, time.UTC))
		want := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Midnight = %v, want %v", got, want)
		}
	})

	t.Run("local instant keeps its civil date", func(t *testing.T) {
		taipei := time.FixedZone("UTC+8", 8*60*60)
		// 01:30 Feb 11 in Taipei is still Feb 10 in UTC; the civil date
		// observed by the owner is what counts.
		got := Midnight(time.Date(2026, 2, 11, 1, 30, 0, 0, taipei))
		want := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("Midnight = %v, want %v", got, want)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		d := Midnight(time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC))
		if !Midnight(d).Equal(d) {
			t.Errorf("Midnight(Midnight(t)) = %v, want %v", Midnight(d), d)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			name: "same day ignores time of day",
			a:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC),
			want: 0,
		},
		{
			name: "adjacent days",
			a:    time.Date(2026, 2, 10, 22, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 11, 1, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "negative when b precedes a",
			a:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC),
			want: -3,
		},
		{
			name: "spans a month boundary",
			a:    time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday maps to itself", time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)},
		{"sunday is the end of the week", time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(monday) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, monday)
			}
		})
	}
}

func TestMondayIndex(t *testing.T) {
	want := map[time.Weekday]int{
		time.Monday:    0,
		time.Tuesday:   1,
		time.Wednesday: 2,
		time.Thursday:  3,
		time.Friday:    4,
		time.Saturday:  5,
		time.Sunday:    6,
	}

	for day, idx := range want {
		if got := MondayIndex(day); got != idx {
			t.Errorf("MondayIndex(%v) = %d, want %d", day, got, idx)
		}
	}
}
