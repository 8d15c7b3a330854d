package storage

import "errors"

var (
	// ErrNotFound is returned when a row or key does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("conflict")
)
