package repository

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/core"
)

func newTestWriter(t *testing.T, opts ...ConfigOption) (*Writer, string) {
	t.Helper()
	base := t.TempDir()
	cfg := NewConfig(append([]ConfigOption{WithBasePath(base)}, opts...)...)
	w, err := NewWriter(cfg)
	require.NoError(t, err)
	return w, base
}

func invoiceRequest() *WriteRequest {
	return &WriteRequest{
		Entity:           "acme",
		Name:             "invoices",
		Content:          []byte("%PDF-1.7 fake invoice body"),
		MimeType:         "application/pdf",
		CreatedAt:        time.Date(2025, 11, 5, 14, 30, 0, 0, time.UTC),
		OriginalFilename: "Invoice 1234.PDF",
		Origin:           map[string]any{"connector": "email", "from": "billing@acme.test"},
	}
}

func readSidecar(t *testing.T, path string) *core.DocumentMetadata {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var md core.DocumentMetadata
	require.NoError(t, json.Unmarshal(data, &md))
	return &md
}

func TestWriteDocument(t *testing.T) {
	w, base := newTestWriter(t)
	req := invoiceRequest()

	res, err := w.WriteDocument(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "acme", "docs", "2025", "2025-11-05-invoice-1234.pdf"), res.ContentPath)
	assert.Equal(t, filepath.Join(base, "acme", "docs", "2025", "2025-11-05-invoice-1234.meta.json"), res.MetadataPath)
	assert.Len(t, res.DocumentID, 16)

	content, err := os.ReadFile(res.ContentPath)
	require.NoError(t, err)
	assert.Equal(t, req.Content, content)

	md := readSidecar(t, res.MetadataPath)
	assert.Equal(t, "acme", md.Entity)
	assert.Equal(t, core.CategoryDocument, md.Category)
	assert.Equal(t, "invoices", md.Name)
	assert.Equal(t, "application/pdf", md.MimeType)
	assert.Equal(t, int64(len(req.Content)), md.Size)
	assert.Equal(t, "acme/docs/2025/2025-11-05-invoice-1234.pdf", md.ContentPath)
	assert.Equal(t, core.SchemaVersionCurrent, md.SchemaVersion)
	assert.False(t, md.SavedAt.IsZero())

	wantHash, err := ComputeHash(HashAlgorithmDefault, req.Content)
	require.NoError(t, err)
	assert.Equal(t, wantHash, md.ContentHash)
	assert.True(t, strings.HasPrefix(md.ContentHash, "blake2b:"))
}

func TestWriteStream(t *testing.T) {
	w, base := newTestWriter(t)

	res, err := w.WriteStream(context.Background(), &WriteRequest{
		Entity:           "acme",
		Name:             "slack/general",
		Content:          []byte("# transcript\n"),
		MimeType:         "text/markdown",
		CreatedAt:        time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC),
		OriginalFilename: "transcript.md",
	})
	require.NoError(t, err)

	assert.Equal(t,
		filepath.Join(base, "acme", "streams", "slack", "general", "2025", "2025-11-05-transcript.md"),
		res.ContentPath)

	md := readSidecar(t, res.MetadataPath)
	assert.Equal(t, core.CategoryStream, md.Category)
	assert.Equal(t, "slack/general", md.Name)
}

func TestWriteDocument_Collision(t *testing.T) {
	w, _ := newTestWriter(t)
	ctx := context.Background()

	first, err := w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)
	second, err := w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.ContentPath, second.ContentPath)
	assert.FileExists(t, first.ContentPath)
	assert.FileExists(t, second.ContentPath)

	suffix := CollisionSuffix(invoiceRequest().CreatedAt, "invoice-1234")
	assert.Contains(t, filepath.Base(second.ContentPath), "-"+suffix+".")

	// Third identical write reuses the alternate slot; no further probing.
	third, err := w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, second.ContentPath, third.ContentPath)
}

func TestWriteDocument_ValidationError(t *testing.T) {
	w, base := newTestWriter(t)

	req := invoiceRequest()
	req.MimeType = ""

	_, err := w.WriteDocument(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, core.ErrEmptyMimeType)

	// Nothing was written.
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteDocument_PathError(t *testing.T) {
	w, base := newTestWriter(t)

	req := invoiceRequest()
	req.Entity = "../evil"

	_, err := w.WriteDocument(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPath)

	var structured *Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, KindPath, structured.Kind)
	assert.NotEmpty(t, structured.Hint)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteDocument_NoTempLeftovers(t *testing.T) {
	w, base := newTestWriter(t)
	ctx := context.Background()

	_, err := w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)
	_, err = w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)

	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(d.Name(), ".tmp-"), "temp artifact left behind: %s", path)
		return nil
	})
	require.NoError(t, err)
}

func TestWriteDocument_Manifest(t *testing.T) {
	w, base := newTestWriter(t, WithManifest(true))
	ctx := context.Background()

	_, err := w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)
	_, err = w.WriteDocument(ctx, invoiceRequest())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(base, "acme", ManifestName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "document", rec["type"])
		assert.NotEmpty(t, rec["content_path"])
	}
}

func TestWriteDocument_HashingDisabled(t *testing.T) {
	w, _ := newTestWriter(t, WithComputeHashes(false))

	res, err := w.WriteDocument(context.Background(), invoiceRequest())
	require.NoError(t, err)
	assert.Len(t, res.DocumentID, 16)

	md := readSidecar(t, res.MetadataPath)
	assert.Empty(t, md.ContentHash)
}

func TestWriteDocument_FlatLayout(t *testing.T) {
	w, base := newTestWriter(t, WithLayoutVersion(LayoutVersionFlat))

	res, err := w.WriteDocument(context.Background(), invoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "acme", "docs", "2025-11-05-invoice-1234.pdf"), res.ContentPath)
}

func TestWriteDocument_CanceledContext(t *testing.T) {
	w, _ := newTestWriter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.WriteDocument(ctx, invoiceRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestNewWriter_ConfigRequired(t *testing.T) {
	_, err := NewWriter(nil)
	assert.ErrorIs(t, err, ErrConfigRequired)

	_, err = NewWriter(&Config{})
	assert.Error(t, err)
}
