package domain

import (
	"testing"
	"time"
)

func TestJobLockHeldAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 0, 5, 0, 0, time.UTC)
	lock := &JobLock{
		Name:        "weekly_task_generation",
		LockedUntil: now.Add(10 * time.Minute),
		LockedBy:    "host_1",
		LockedAt:    now,
	}

	if !lock.HeldAt(now) {
		t.Error("expected lock to be held immediately after acquisition")
	}
	if !lock.HeldAt(now.Add(9 * time.Minute)) {
		t.Error("expected lock to be held within its duration")
	}
	if lock.HeldAt(now.Add(10 * time.Minute)) {
		t.Error("expected lock to expire exactly at locked_until")
	}
	if lock.HeldAt(now.Add(time.Hour)) {
		t.Error("expected lock to be expired well past locked_until")
	}

	var nilLock *JobLock
	if nilLock.HeldAt(now) {
		t.Error("expected nil lock to report not held")
	}
}
