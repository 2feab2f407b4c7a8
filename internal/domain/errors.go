package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a work item status is not one of
	// the recognized status values.
	ErrInvalidStatus = errors.New("invalid work item status")

	// ErrInvalidRecurrenceMode is returned when a template's recurrence
	// mode is neither interval nor specific_weekdays.
	ErrInvalidRecurrenceMode = errors.New("invalid recurrence mode")

	// ErrInvalidClockTime is returned when a time-of-day string is not in
	// HH:MM form or is out of range.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrInvalidWeekday is returned when a weekday index is outside 0..6.
	ErrInvalidWeekday = errors.New("weekday index out of range")
)
