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


// Package archivit archives documents into a durable on-disk repository and
// maintains a rebuildable search index over the archived metadata.
package archivit

import (
	"log/slog"

	"github.com/poiesic/archivit/index"
	"github.com/poiesic/archivit/repository"
	"github.com/poiesic/archivit/search"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/storage/badger"
)

// Archive bundles the writer, index store, indexer, and searcher for one
// archive tree plus its index directory.
type Archive struct {
	config    *repository.Config
	writer    *repository.Writer
	indexRepo storage.IndexRepository
	logger    *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	repoConfig []repository.ConfigOption
	logger     *slog.Logger
}

// WithRepositoryOptions forwards configuration to the repository writer.
func WithRepositoryOptions(opts ...repository.ConfigOption) ArchiveOption {
	return func(o *archiveOptions) {
		o.repoConfig = append(o.repoConfig, opts...)
	}
}

// WithLogger sets the logger shared by the archive components.
func WithLogger(logger *slog.Logger) ArchiveOption {
	return func(o *archiveOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open sets up an archive rooted at basePath with its index store at
// indexPath. The index directory is created on first use; it is disposable
// and rebuilt by running the indexer.
func Open(basePath, indexPath string, opts ...ArchiveOption) (*Archive, error) {
	options := &archiveOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	cfgOpts := append([]repository.ConfigOption{repository.WithBasePath(basePath)}, options.repoConfig...)
	cfg := repository.NewConfig(cfgOpts...)

	writer, err := repository.NewWriter(cfg, repository.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	indexRepo, err := badger.NewIndexRepository(indexPath)
	if err != nil {
		return nil, err
	}

	return &Archive{
		config:    cfg,
		writer:    writer,
		indexRepo: indexRepo,
		logger:    options.logger,
	}, nil
}

// Close closes the index store. The archive tree itself holds no open
// resources.
func (a *Archive) Close() error {
	if err := a.indexRepo.Close(); err != nil {
		a.logger.Error("error closing index store", "err", err)
		return err
	}
	return nil
}

// Writer returns the repository writer.
func (a *Archive) Writer() *repository.Writer {
	return a.writer
}

// IndexRepository returns the index store.
func (a *Archive) IndexRepository() storage.IndexRepository {
	return a.indexRepo
}

// NewIndexer creates an indexer over the archive's index store.
func (a *Archive) NewIndexer(opts ...index.Option) (*index.Indexer, error) {
	baseOpts := []index.Option{index.WithLogger(a.logger)}
	return index.NewIndexer(a.indexRepo, append(baseOpts, opts...)...)
}

// NewSearcher creates a searcher over the archive's index store.
func (a *Archive) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	baseOpts := []search.Option{search.WithLogger(a.logger)}
	return search.NewSearcher(a.indexRepo, append(baseOpts, opts...)...)
}
