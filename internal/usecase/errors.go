package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrConcurrentModification means the per-user serialization guard
	// aborted a racing submission. Retry once against fresh state.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)
