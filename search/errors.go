package search

import "errors"

var (
	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")

	// ErrInvalidLimit is returned when a negative limit is supplied.
	ErrInvalidLimit = errors.New("limit must be zero or positive")
)
