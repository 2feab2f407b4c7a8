package store

import (
	"context"
	"time"
)

// JobLockStore defines the persisted, self-expiring distributed mutex used
// to prevent duplicate concurrent batch runs.
type JobLockStore interface {
	// Acquire attempts to take the named lock for the given duration on
	// behalf of holder. It returns true when the lock was taken: either no
	// valid lock existed, an expired lock was stolen, or the current
	// holder re-acquired (extending) its own valid lock.
	//
	// A false return is not an error: another holder is active and the
	// caller should skip its run. There is no release; the lock is held
	// until locked_until elapses even if the job finishes early.
	Acquire(ctx context.Context, name, holder string, duration time.Duration) (bool, error)
}
