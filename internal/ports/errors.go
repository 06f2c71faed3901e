package ports

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
	// ErrUnknownRoute is returned by distance providers that cannot answer.
	ErrUnknownRoute = errors.New("unknown route")
)
