package storage

import "errors"

// Storage errors for created-coin stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with an id that already exists. Records are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: record already exists")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
