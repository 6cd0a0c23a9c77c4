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


package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

// Searcher provides keyword and substring search over the global index.
type Searcher struct {
	indexRepository storage.IndexRepository
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given index repository.
func NewSearcher(indexRepository storage.IndexRepository, opts ...Option) (*Searcher, error) {
	if indexRepository == nil {
		return nil, ErrIndexRepositoryRequired
	}

	s := &Searcher{
		indexRepository: indexRepository,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// QueryOption narrows a search.
type QueryOption func(*querySpec)

type querySpec struct {
	entity string
}

// WithEntity restricts results to a single entity.
func WithEntity(entity string) QueryOption {
	return func(q *querySpec) {
		q.entity = entity
	}
}

// Search returns index entries matching the query, most recently saved
// first with ties broken by content path. An empty query matches
// everything, so Search("", limit) lists the most recent artifacts. A
// limit of zero returns all matches; a negative limit is rejected with
// ErrInvalidLimit. Searching an empty index returns an empty slice,
// never an error.
func (s *Searcher) Search(ctx context.Context, query string, limit int, opts ...QueryOption) ([]*core.SearchResult, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	spec := &querySpec{}
	for _, opt := range opts {
		opt(spec)
	}

	entries, err := s.indexRepository.RecentEntries(ctx, 0)
	if err != nil {
		s.logger.Error("error reading index entries", "err", err)
		return nil, err
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	queryWords := tokenizeAndFilter(query)

	results := make([]*core.SearchResult, 0, len(entries))
	for _, entry := range entries {
		if spec.entity != "" && entry.Entity != spec.entity {
			continue
		}

		score, ok := matchScore(entry, lowered, queryWords)
		if !ok {
			continue
		}
		results = append(results, &core.SearchResult{Entry: entry, Score: score})
	}

	// RecentEntries is already saved-at descending; the stable re-sort adds
	// the content-path tiebreak for entries saved in the same instant.
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Entry, results[j].Entry
		if !a.SavedAt.Equal(b.SavedAt) {
			return a.SavedAt.After(b.SavedAt)
		}
		return a.ContentPath < b.ContentPath
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchScore reports whether an entry matches the query and how strongly:
// filename substring hits outrank token-set hits. An empty query matches
// everything with zero score.
func matchScore(entry *core.IndexEntry, lowered string, queryWords []string) (float32, bool) {
	if lowered == "" {
		return 0, true
	}
	if strings.Contains(strings.ToLower(entry.Filename), lowered) {
		return 1, true
	}
	if containsAllQueryWords(entry.Tokens, queryWords) {
		return 0.5, true
	}
	return 0, false
}
