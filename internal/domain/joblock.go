package domain

import "time"

// JobLock is a persisted, self-expiring mutex preventing duplicate
// concurrent execution of a named batch job across processes.
//
// There is no explicit release: a lock is held for its full configured
// duration even when the job finishes early. A crashed holder self-heals
// once LockedUntil elapses, at which point any caller may steal the row.
type JobLock struct {
	// Name identifies the job, e.g. "weekly_task_generation".
	Name string `json:"name"`

	LockedUntil time.Time `json:"locked_until"`

	// LockedBy is an opaque holder identity, conventionally hostname_pid.
	LockedBy string `json:"locked_by"`

	LockedAt time.Time `json:"locked_at"`
}

// HeldAt reports whether the lock is still valid at the given instant.
func (l *JobLock) HeldAt(now time.Time) bool {
	return l != nil && l.LockedUntil.After(now)
}
