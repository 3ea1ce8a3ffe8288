package restore

import "errors"

var (
	// ErrInvalidEntityID is returned when an empty unique id is given.
	ErrInvalidEntityID = errors.New("restore: entity id is required")

	// ErrNilData is returned when saving a nil record.
	ErrNilData = errors.New("restore: data is required")
)
