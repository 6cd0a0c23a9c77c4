package index

import "errors"

var (
	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")

	// ErrBasePathRequired is returned when a run is started without a base path.
	ErrBasePathRequired = errors.New("base path required")
)
