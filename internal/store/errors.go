package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity. For generated work items this is the storage
	// uniqueness constraint on (template_id, generated_for_date) firing
	// under a race; callers treat it as "someone else already generated
	// today's item", not as a failure.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrWorkItemNotFound indicates that the requested work item does not exist.
	ErrWorkItemNotFound = fmt.Errorf("%w: work item", ErrNotFound)

	// ErrTemplateNotFound indicates that the requested recurrence template does not exist.
	ErrTemplateNotFound = fmt.Errorf("%w: recurrence template", ErrNotFound)

	// ErrPlanTemplateNotFound indicates that the requested weekly plan template does not exist.
	ErrPlanTemplateNotFound = fmt.Errorf("%w: weekly plan template", ErrNotFound)

	// ErrQuotaNotFound indicates that no exemption quota row exists for the
	// requested owner and week.
	ErrQuotaNotFound = fmt.Errorf("%w: exemption quota", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is a duplicate-entity error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
