package pantry

import "errors"

// Domain errors for pantry operations

var (
	// Entry validation errors
	ErrEmptyText          = errors.New("pantry entry text must not be empty")
	ErrInvalidStorageType = errors.New("unknown storage type")

	// Store errors
	ErrUnparseableStore = errors.New("stored pantry data is not valid JSON")

	// Location errors
	ErrUnknownLocation = errors.New("location is not declared")
	ErrSameLocation    = errors.New("source and destination locations must differ")
	ErrNoLocations     = errors.New("at least one location must be declared")
)
