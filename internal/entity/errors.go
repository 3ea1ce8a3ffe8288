package entity

import "errors"

// Domain errors for the entity package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, entity.ErrOutOfRange) {
//	    // reject the request
//	}
var (
	// ErrEntityNotFound is returned when a unique id is not registered.
	ErrEntityNotFound = errors.New("entity: not found")

	// ErrEntityExists is returned when registering a duplicate unique id.
	ErrEntityExists = errors.New("entity: already exists")

	// ErrNotAttached is returned when setting a value before the entity is attached.
	ErrNotAttached = errors.New("entity: not attached")

	// ErrOutOfRange is returned when a value lies outside the entity bounds.
	ErrOutOfRange = errors.New("entity: value out of range")

	// ErrInvalidStep is returned when a value is not a multiple of the step.
	ErrInvalidStep = errors.New("entity: value not aligned to step")
)
