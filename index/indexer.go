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


package index

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

const (
	sidecarSuffix   = ".meta.json"
	upsertBatchSize = 64
)

// Indexer rebuilds the global search index from the metadata sidecars of an
// archive tree. Runs are idempotent: entries are keyed by content path, so
// re-running over an unchanged tree leaves the index unchanged.
type Indexer struct {
	repository storage.IndexRepository
	pool       *ants.Pool
	logger     *slog.Logger
	monitor    Monitor
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent sidecar parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor observing the run.
func WithMonitor(monitor Monitor) Option {
	return func(ix *Indexer) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		ix.monitor = monitor
		return nil
	}
}

// NewIndexer creates a new Indexer over the given repository.
func NewIndexer(repository storage.IndexRepository, opts ...Option) (*Indexer, error) {
	if repository == nil {
		return nil, ErrIndexRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		repository: repository,
		pool:       pool,
		logger:     slog.Default(),
		monitor:    &noopMonitor{},
	}
	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}
	return ix, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Report summarizes one index run.
type Report struct {
	// Indexed is the number of sidecars turned into index entries.
	Indexed int
	// Skipped is the number of malformed sidecars that were logged and
	// passed over.
	Skipped int
}

// Run walks the archive tree under basePath, parses every metadata sidecar,
// and upserts the resulting entries. Malformed sidecars are skipped, never
// fatal. A run marker is saved after a successful run.
func (ix *Indexer) Run(ctx context.Context, basePath string) (*Report, error) {
	if basePath == "" {
		return nil, ErrBasePathRequired
	}
	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	ix.monitor.Start(base)

	sidecars, err := collectSidecars(base)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		entries []*core.IndexEntry
		skipped int
	)

	for _, rel := range sidecars {
		if err := ctx.Err(); err != nil {
			break
		}

		rel := rel
		wg.Add(1)
		task := func() {
			defer wg.Done()
			entry, parseErr := ix.parseSidecar(base, rel)

			mu.Lock()
			defer mu.Unlock()
			if parseErr != nil {
				skipped++
				ix.logger.Warn("skipping malformed sidecar", "path", rel, "error", parseErr)
				ix.monitor.SidecarSkipped(rel, parseErr)
				return
			}
			entries = append(entries, entry)
			ix.monitor.SidecarIndexed(rel)
		}
		if submitErr := ix.pool.Submit(task); submitErr != nil {
			// Pool unavailable; parse on the calling goroutine.
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for start := 0; start < len(entries); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := ix.repository.UpsertEntries(ctx, entries[start:end]...); err != nil {
			return nil, err
		}
	}

	report := &Report{Indexed: len(entries), Skipped: skipped}

	marker := &core.RunMarker{
		LastRunAt: time.Now().UTC(),
		Indexed:   report.Indexed,
		Skipped:   report.Skipped,
	}
	if err := ix.repository.SaveRunMarker(ctx, marker); err != nil {
		ix.logger.Warn("saving run marker failed", "error", err)
	}

	ix.monitor.Finish(report)
	ix.logger.Info("index run complete", "indexed", report.Indexed, "skipped", report.Skipped)
	return report, nil
}

// collectSidecars returns the relative paths of all sidecar files under the
// docs and streams subtrees. Dotfiles, including in-flight ".tmp-*" files,
// are ignored.
func collectSidecars(base string) ([]string, error) {
	var sidecars []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != base && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sidecarSuffix) {
			return nil
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		// Only {entity}/docs and {entity}/streams trees hold archive sidecars.
		parts := strings.Split(rel, "/")
		if len(parts) < 3 || (parts[1] != "docs" && parts[1] != "streams") {
			return nil
		}

		sidecars = append(sidecars, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sidecars, nil
}

// parseSidecar reads one sidecar and builds its index entry.
func (ix *Indexer) parseSidecar(base, rel string) (*core.IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	var md core.DocumentMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, err
	}
	if err := core.ValidateMetadata(&md, false); err != nil {
		return nil, err
	}
	if md.ContentPath == "" {
		return nil, core.ErrEmptyContentPath
	}

	savedAt := md.SavedAt
	if savedAt.IsZero() {
		// Legacy v1 sidecars carry no saved_at.
		savedAt = md.CreatedAt
	}

	return &core.IndexEntry{
		Id:           core.IDFromContent(md.ContentPath),
		Entity:       md.Entity,
		Filename:     path.Base(md.ContentPath),
		ContentPath:  md.ContentPath,
		MetadataPath: rel,
		Category:     md.Category,
		CreatedAt:    md.CreatedAt,
		SavedAt:      savedAt,
		Tokens:       Tokenize(tokenSources(&md)...),
	}, nil
}

// tokenSources gathers the text fed to the tokenizer: original filename,
// final filename, workflow or stream name, and the origin's well-known
// string fields.
func tokenSources(md *core.DocumentMetadata) []string {
	sources := []string{md.OriginalFilename, path.Base(md.ContentPath), md.Name}
	for _, key := range []string{"subject", "from", "workflow", "connector"} {
		if s, ok := md.Origin[key].(string); ok {
			sources = append(sources, s)
		}
	}
	return sources
}
