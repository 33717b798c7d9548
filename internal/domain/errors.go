package domain

import "errors"

var (
	// ErrSyncAlreadyRunning is returned when a batch is triggered while
	// another one is in flight. Surfaced as a distinct condition so callers
	// can show "already running" instead of a generic failure.
	ErrSyncAlreadyRunning = errors.New("a sync is already running")

	// ErrSyncNotRunning is returned when cancelling a run that is not active.
	ErrSyncNotRunning = errors.New("no matching sync run is active")

	// ErrRawPlaceNotFound is returned when a raw place id resolves to nothing.
	ErrRawPlaceNotFound = errors.New("raw place not found")

	// ErrCandidateNotFound is returned when an import candidate id resolves
	// to nothing.
	ErrCandidateNotFound = errors.New("import candidate not found")

	// ErrInvalidCandidateState is returned when a review operation targets a
	// candidate whose status does not allow it (e.g. approving a rejected
	// candidate, or losing the approve race to another reviewer).
	ErrInvalidCandidateState = errors.New("candidate is not in a reviewable state")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoMatch is returned by province lookups that find nothing close
	// enough. This is a valid, non-exceptional outcome; callers default the
	// province rather than failing.
	ErrNoMatch = errors.New("no province match")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
