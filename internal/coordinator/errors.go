package coordinator

import "errors"

var (
	// ErrUpdateFailed wraps any error returned by the update function.
	ErrUpdateFailed = errors.New("coordinator: update failed")

	// ErrCoordinatorNotFound is returned by Registry lookups for unknown entries.
	ErrCoordinatorNotFound = errors.New("coordinator: not found")

	// ErrCoordinatorExists is returned when adding a second coordinator for an entry.
	ErrCoordinatorExists = errors.New("coordinator: already exists")
)
