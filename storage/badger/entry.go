// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
// Each entry is stored under its ID key, with a BigEndian saved-at composite
// key maintained alongside for most-recent-first iteration.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository opens (or creates) the index store at path.
func NewIndexRepository(path string) (storage.IndexRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &IndexRepository{backend: backend}, nil
}

// newIndexRepository wraps an already-open backend.
func newIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{backend: backend}
}

// Close closes the underlying store.
func (r *IndexRepository) Close() error {
	return r.backend.Close()
}

// UpsertEntries inserts or replaces entries keyed by their Id. The saved-at
// index key of a replaced entry is removed before the new one is written, so
// each entry has exactly one position in the recency ordering.
func (r *IndexRepository) UpsertEntries(ctx context.Context, entries ...*core.IndexEntry) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if err := core.ValidateIndexEntry(entry); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeEntryKey(entry.Id)

			prev, err := readEntry(tx, key)
			if err != nil {
				return err
			}
			if prev != nil {
				if err := tx.Delete(makeSavedAtKey(prev.SavedAt, prev.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
			if err := tx.Set(makeSavedAtKey(entry.SavedAt, entry.Id), storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by ID.
func (r *IndexRepository) GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readEntry(tx, makeEntryKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// RecentEntries retrieves entries ordered by SavedAt descending.
// A limit <= 0 returns all entries.
func (r *IndexRepository) RecentEntries(ctx context.Context, limit int) ([]*core.IndexEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var results []*core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reverse iteration over the saved-at index yields newest first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeSavedAtKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))
		prefix := []byte(indexEntrySavedAtPrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)

	return results, err
}

// CountEntries returns the number of entries in the index.
func (r *IndexRepository) CountEntries(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(indexEntryPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// SaveRunMarker persists the checkpoint of a completed index run.
func (r *IndexRepository) SaveRunMarker(ctx context.Context, marker *core.RunMarker) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRunMarkerKey(), storage.MarshalRunMarker(marker)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadRunMarker retrieves the checkpoint of the last completed run.
// Returns nil, nil if no run has completed yet.
func (r *IndexRepository) LoadRunMarker(ctx context.Context) (*core.RunMarker, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var marker *core.RunMarker
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRunMarkerKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			marker, unmarshalErr = storage.UnmarshalRunMarker(val)
			return unmarshalErr
		})
	}, false)

	return marker, err
}

// readEntry reads and decodes one entry. Returns nil, nil when the key is
// absent.
func readEntry(tx *badger.Txn, key []byte) (*core.IndexEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.IndexEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalIndexEntry(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
