package booking

import "errors"

// Sentinel errors returned by the engine and the surrounding services.
// Callers branch on these with errors.Is; the API layer maps them to
// HTTP status codes and reason strings.
var (
	// ErrInvalidWindow means the requested time range is malformed or has
	// non-positive duration after normalization.
	ErrInvalidWindow = errors.New("invalid reservation window")

	// ErrNoCapacity means the garage is fully booked for at least one hour
	// of the requested window.
	ErrNoCapacity = errors.New("no capacity for requested window")

	// ErrInvalidState means the booking is not in a state that permits the
	// attempted transition (e.g. modifying a confirmed booking).
	ErrInvalidState = errors.New("booking state does not permit operation")

	// ErrNotFound means the garage or booking does not exist in storage.
	ErrNotFound = errors.New("not found")

	// ErrStorageConflict means a concurrent write race was detected by the
	// store. Mutating service calls retry a bounded number of times before
	// giving up.
	ErrStorageConflict = errors.New("storage write conflict")
)
