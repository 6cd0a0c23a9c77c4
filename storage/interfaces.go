package storage

import (
	"context"

	"github.com/poiesic/archivit/core"
)

// IndexRepository provides operations for the global search index.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// UpsertEntries inserts or replaces index entries keyed by their Id.
	// Re-upserting an existing entry also refreshes its saved-at ordering.
	UpsertEntries(ctx context.Context, entries ...*core.IndexEntry) error

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error)

	// RecentEntries retrieves entries ordered by SavedAt descending.
	// A limit <= 0 returns all entries.
	RecentEntries(ctx context.Context, limit int) ([]*core.IndexEntry, error)

	// CountEntries returns the number of entries in the index.
	CountEntries(ctx context.Context) (int, error)

	// SaveRunMarker persists the checkpoint of a completed index run.
	SaveRunMarker(ctx context.Context, marker *core.RunMarker) error

	// LoadRunMarker retrieves the checkpoint of the last completed run.
	// Returns nil, nil if no run has completed yet.
	LoadRunMarker(ctx context.Context) (*core.RunMarker, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
