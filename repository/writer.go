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


package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/archivit/core"
)

// Writer archives content and its metadata sidecar under the configured base
// directory. All methods are safe for concurrent use; distinct logical
// artifacts never share a final path, so concurrent writers do not contend.
type Writer struct {
	cfg    *Config
	layout *Layout
	base   string
	logger *slog.Logger
}

// WriterOption configures optional Writer collaborators.
type WriterOption func(*Writer)

// WithLogger sets the logger used for non-fatal write-path events.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter validates the config and builds a Writer rooted at its base path.
func NewWriter(cfg *Config, opts ...WriterOption) (*Writer, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := cfg.AbsBase()
	if err != nil {
		return nil, fmt.Errorf("resolving base path: %w", err)
	}

	layout, err := NewLayout(cfg.LayoutVersion)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:    cfg,
		layout: layout,
		base:   base,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// WriteRequest describes one artifact to archive.
type WriteRequest struct {
	// Entity is the top-level owner directory, already in sanitized form.
	Entity string

	// Name is the workflow for documents and attachments, or the
	// slash-delimited stream path for streams.
	Name string

	// Content is the exact byte payload to archive.
	Content []byte

	// MimeType of the content, required.
	MimeType string

	// CreatedAt is the caller-supplied artifact timestamp. It determines the
	// date prefix and year bucket.
	CreatedAt time.Time

	// OriginalFilename seeds the sanitized slug and the fallback extension.
	OriginalFilename string

	// Origin carries opaque connector context, recorded verbatim in metadata.
	Origin map[string]any
}

// WriteResult reports where an artifact landed.
type WriteResult struct {
	// DocumentID is the stable 16-hex identifier of the archived artifact.
	DocumentID string

	// ContentPath and MetadataPath are absolute paths under the base.
	ContentPath  string
	MetadataPath string
}

// WriteDocument archives a workflow document.
func (w *Writer) WriteDocument(ctx context.Context, req *WriteRequest) (*WriteResult, error) {
	return w.write(ctx, core.CategoryDocument, req)
}

// WriteAttachment archives a workflow attachment.
func (w *Writer) WriteAttachment(ctx context.Context, req *WriteRequest) (*WriteResult, error) {
	return w.write(ctx, core.CategoryAttachment, req)
}

// WriteStream archives a rendered stream artifact under the slash-delimited
// stream path in req.Name.
func (w *Writer) WriteStream(ctx context.Context, req *WriteRequest) (*WriteResult, error) {
	return w.write(ctx, core.CategoryStream, req)
}

func (w *Writer) write(ctx context.Context, category core.Category, req *WriteRequest) (*WriteResult, error) {
	if req == nil {
		return nil, validationError("write request is nil", "supply a populated WriteRequest", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, writeError("write canceled", "retry once the context is live", err)
	}

	rel, err := w.layout.ContentPath(req.Entity, category, req.Name, req.CreatedAt, req.OriginalFilename, req.MimeType)
	if err != nil {
		return nil, pathError("resolving content path", "use sanitized lowercase names without path separators", err)
	}

	var hash string
	if w.cfg.ComputeHashes {
		hash, err = ComputeHash(w.cfg.HashAlgorithm, req.Content)
		if err != nil {
			return nil, writeError("computing content hash", "check the configured hash algorithm", err)
		}
	}

	md := &core.DocumentMetadata{
		Entity:           req.Entity,
		Category:         category,
		Name:             req.Name,
		MimeType:         req.MimeType,
		ContentHash:      hash,
		Size:             int64(len(req.Content)),
		CreatedAt:        req.CreatedAt.UTC(),
		SavedAt:          time.Now().UTC(),
		Origin:           req.Origin,
		OriginalFilename: req.OriginalFilename,
		SchemaVersion:    core.SchemaVersionCurrent,
	}

	// Validation happens before any filesystem mutation.
	if err := core.ValidateMetadata(md, w.cfg.ComputeHashes); err != nil {
		return nil, validationError("invalid metadata", "supply entity, mimetype and a created-at timestamp", err)
	}

	rel, err = w.resolveSlot(category, req, rel)
	if err != nil {
		return nil, err
	}
	md.ContentPath = rel

	absContent, err := w.absUnderBase(rel)
	if err != nil {
		return nil, err
	}
	absMeta, err := w.absUnderBase(MetadataPath(rel))
	if err != nil {
		return nil, err
	}

	if w.cfg.CreateDirectories {
		if err := os.MkdirAll(filepath.Dir(absContent), 0o755); err != nil {
			return nil, writeError("creating parent directories", "check base path permissions", err)
		}
	}

	// Content first, sidecar second. A crash between the two leaves content
	// without metadata, which the indexer simply never sees.
	if err := w.publish(absContent, req.Content); err != nil {
		return nil, err
	}

	sidecar, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return nil, writeError("encoding metadata sidecar", "", err)
	}
	if err := w.publish(absMeta, sidecar); err != nil {
		return nil, err
	}

	if w.cfg.EnableManifest {
		// Manifest trouble never fails the write.
		if err := w.appendManifest(md); err != nil {
			w.logger.Warn("manifest append failed", "entity", req.Entity, "error", err)
		}
	}

	return &WriteResult{
		DocumentID:   documentID(hash, rel),
		ContentPath:  absContent,
		MetadataPath: absMeta,
	}, nil
}

// resolveSlot probes the canonical path and, when occupied, switches to the
// single deterministic alternate. At most one disambiguation step per write.
func (w *Writer) resolveSlot(category core.Category, req *WriteRequest, rel string) (string, error) {
	occupied, err := w.slotOccupied(rel)
	if err != nil {
		return "", err
	}
	if !occupied {
		return rel, nil
	}

	alt, err := w.layout.AlternateContentPath(req.Entity, category, req.Name, req.CreatedAt, req.OriginalFilename, req.MimeType)
	if err != nil {
		return "", pathError("resolving alternate content path", "", err)
	}
	return alt, nil
}

// slotOccupied reports whether the content path or its sidecar already exists.
func (w *Writer) slotOccupied(rel string) (bool, error) {
	for _, p := range []string{rel, MetadataPath(rel)} {
		abs, err := w.absUnderBase(p)
		if err != nil {
			return false, err
		}
		if _, err := os.Stat(abs); err == nil {
			return true, nil
		} else if !os.IsNotExist(err) {
			return false, writeError("probing existing path", "check base path permissions", err)
		}
	}
	return false, nil
}

// absUnderBase joins a relative path onto the base and rejects any result
// escaping it.
func (w *Writer) absUnderBase(rel string) (string, error) {
	abs := filepath.Join(w.base, filepath.FromSlash(rel))
	if abs != w.base && !strings.HasPrefix(abs, w.base+string(filepath.Separator)) {
		return "", pathError(fmt.Sprintf("path %q escapes repository base", rel), "remove traversal sequences from names", nil)
	}
	return abs, nil
}

// publish writes data to its final path. With atomic writes enabled the bytes
// land in a same-directory temp file, get synced, then renamed into place, so
// readers only ever observe complete files.
func (w *Writer) publish(abs string, data []byte) error {
	if !w.cfg.AtomicWrites {
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return writeError(fmt.Sprintf("writing %s", filepath.Base(abs)), "check free space and permissions", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".tmp-*")
	if err != nil {
		return writeError("creating temp file", "check base path permissions", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeError(fmt.Sprintf("writing %s", filepath.Base(abs)), "check free space", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeError(fmt.Sprintf("syncing %s", filepath.Base(abs)), "check the underlying filesystem", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeError(fmt.Sprintf("closing %s", filepath.Base(abs)), "", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return writeError(fmt.Sprintf("publishing %s", filepath.Base(abs)), "check base path permissions", err)
	}
	return nil
}

// documentID derives the stable identifier: from the content hash when
// hashing is enabled, otherwise from the relative content path.
func documentID(hash, rel string) string {
	if hash != "" {
		return core.IDFromContent(hash).Hex()
	}
	return core.IDFromContent(rel).Hex()
}
