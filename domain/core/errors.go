package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
	ErrParcelNotFound   = fmt.Errorf("%w: parcel", ErrNotFound)
	ErrCropNotFound     = fmt.Errorf("%w: crop", ErrNotFound)

	// Structural input errors - these abort snapshot construction
	ErrInvalidObservation = errors.New("structurally invalid observation")
	ErrEmptySnapshot      = errors.New("snapshot contains no observations")

	// Analysis conditions - surfaced as result variants, never panics
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrUndefinedResult  = errors.New("result undefined for input")
	ErrUnknownGroupKey  = errors.New("unknown group key")
)

// Error constructors with context
func NewInvalidObservationError(row int, reason string) error {
	return fmt.Errorf("%w: row %d: %s", ErrInvalidObservation, row, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrInvalidObservation) ||
		errors.Is(err, ErrEmptySnapshot)
}
