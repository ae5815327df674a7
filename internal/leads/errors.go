package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("leads: lead not found")

	// ErrNilRecord is returned when Create is called without a record
	ErrNilRecord = errors.New("leads: record is required")

	// ErrInvalidStatus is returned for status values outside the lifecycle
	ErrInvalidStatus = errors.New("leads: invalid status")

	// ErrInvalidTransition is returned when a status change would move a
	// lead backwards or out of a terminal state
	ErrInvalidTransition = errors.New("leads: invalid status transition")

	// ErrStatusConflict is returned when the lead changed between read and write
	ErrStatusConflict = errors.New("leads: status changed concurrently")
)
