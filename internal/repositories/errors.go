package repositories

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or its id is
	// not a valid id for the backend.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrConflict is returned when a conditional update found the document
	// but its guard did not hold.
	ErrConflict = errors.New("conflict")
)
