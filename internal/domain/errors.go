package domain

import "errors"

var (
	// ErrStoreUnavailable is returned when the store is not initialized or the
	// database cannot be reached.
	ErrStoreUnavailable = errors.New("database not initialized")

	// ErrNotFound is returned when a referenced session or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO wraps storage failures that are not a missing row.
	ErrIO = errors.New("storage failure")

	// ErrFragmentRejected is returned when the intake policy blocks a fragment.
	ErrFragmentRejected = errors.New("fragment rejected")

	// ErrUnknownSignal is returned for signal names outside the known set.
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrInvalidRequest is returned for malformed command input.
	ErrInvalidRequest = errors.New("invalid request")
)
