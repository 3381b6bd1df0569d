package database

import "errors"

var (
	// ErrNotFound is returned when a record lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
