package model

import "errors"

// Failure categories surfaced by calculation runs. Wrap these with %w so
// callers can classify failures without parsing messages.
var (
	// ErrInvalidInput marks malformed or inconsistent calculation input,
	// rejected before any solving starts.
	ErrInvalidInput = errors.New("invalid calculation input")

	// ErrTimeout marks a run that exceeded its execution deadline.
	ErrTimeout = errors.New("calculation timed out")

	// ErrInternal marks an unexpected failure inside the engine, including
	// recovered panics.
	ErrInternal = errors.New("internal calculation error")

	// ErrNotFound marks a missing snapshot or proposal.
	ErrNotFound = errors.New("not found")
)
