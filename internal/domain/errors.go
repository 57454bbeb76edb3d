package domain

import "errors"

var (
	// ErrInvalidRange covers start >= end, unparsable dates, empty day sets and negative amounts.
	ErrInvalidRange = errors.New("invalid range")

	// ErrConflict is returned when the requested dates are already taken.
	ErrConflict = errors.New("dates not available")

	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps any persistence failure other than not-found.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidStatus     = errors.New("invalid rental request status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidReason     = errors.New("invalid block reason")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
)
