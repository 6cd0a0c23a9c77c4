package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/repository"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/storage/badger"
)

// seedArchive writes a small archive tree: two documents for different
// entities and one stream artifact.
func seedArchive(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	w, err := repository.NewWriter(repository.NewConfig(repository.WithBasePath(base)))
	require.NoError(t, err)

	ctx := context.Background()
	created := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)

	_, err = w.WriteDocument(ctx, &repository.WriteRequest{
		Entity:           "acme",
		Name:             "invoices",
		Content:          []byte("invoice body"),
		MimeType:         "application/pdf",
		CreatedAt:        created,
		OriginalFilename: "Invoice 1234.PDF",
		Origin:           map[string]any{"subject": "November invoice", "from": "billing@acme.test"},
	})
	require.NoError(t, err)

	_, err = w.WriteDocument(ctx, &repository.WriteRequest{
		Entity:           "globex",
		Name:             "contracts",
		Content:          []byte("contract body"),
		MimeType:         "text/plain",
		CreatedAt:        created.Add(time.Hour),
		OriginalFilename: "MSA Draft.txt",
	})
	require.NoError(t, err)

	_, err = w.WriteStream(ctx, &repository.WriteRequest{
		Entity:           "acme",
		Name:             "slack/general",
		Content:          []byte("# transcript\n"),
		MimeType:         "text/markdown",
		CreatedAt:        created.Add(2 * time.Hour),
		OriginalFilename: "transcript.md",
	})
	require.NoError(t, err)

	return base
}

func newTestIndexer(t *testing.T, opts ...Option) (*Indexer, storage.IndexRepository) {
	t.Helper()
	repo, err := badger.NewMemoryIndexRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ix, err := NewIndexer(repo, opts...)
	require.NoError(t, err)
	t.Cleanup(ix.Release)
	return ix, repo
}

func TestIndexer_Run(t *testing.T) {
	base := seedArchive(t)
	ix, repo := newTestIndexer(t)
	ctx := context.Background()

	report, err := ix.Run(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 0, report.Skipped)

	count, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	marker, err := repo.LoadRunMarker(ctx)
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, 3, marker.Indexed)
	assert.Equal(t, 0, marker.Skipped)
	assert.False(t, marker.LastRunAt.IsZero())
}

func TestIndexer_EntryContents(t *testing.T) {
	base := seedArchive(t)
	ix, repo := newTestIndexer(t)
	ctx := context.Background()

	_, err := ix.Run(ctx, base)
	require.NoError(t, err)

	contentPath := "acme/docs/2025/2025-11-05-invoice-1234.pdf"
	entry, err := repo.GetEntry(ctx, core.IDFromContent(contentPath))
	require.NoError(t, err)

	assert.Equal(t, "acme", entry.Entity)
	assert.Equal(t, contentPath, entry.ContentPath)
	assert.Equal(t, "acme/docs/2025/2025-11-05-invoice-1234.meta.json", entry.MetadataPath)
	assert.Equal(t, "2025-11-05-invoice-1234.pdf", entry.Filename)
	assert.Equal(t, core.CategoryDocument, entry.Category)
	assert.Contains(t, entry.Tokens, "invoice")
	assert.Contains(t, entry.Tokens, "november")
	assert.Contains(t, entry.Tokens, "invoices")
}

func TestIndexer_Idempotent(t *testing.T) {
	base := seedArchive(t)
	ix, repo := newTestIndexer(t)
	ctx := context.Background()

	first, err := ix.Run(ctx, base)
	require.NoError(t, err)
	second, err := ix.Run(ctx, base)
	require.NoError(t, err)

	assert.Equal(t, first.Indexed, second.Indexed)

	count, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Indexed, count)
}

func TestIndexer_SkipsMalformedSidecar(t *testing.T) {
	base := seedArchive(t)
	dir := filepath.Join(base, "acme", "docs", "2025")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025-11-06-broken.meta.json"), []byte("{not json"), 0o644))

	ix, repo := newTestIndexer(t)
	ctx := context.Background()

	report, err := ix.Run(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 1, report.Skipped)

	count, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIndexer_IgnoresTempAndForeignFiles(t *testing.T) {
	base := seedArchive(t)
	dir := filepath.Join(base, "acme", "docs", "2025")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-12345"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "acme", "manifest.log"), []byte("{}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "stray.meta.json"), []byte("{}"), 0o644))

	ix, _ := newTestIndexer(t)

	report, err := ix.Run(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 0, report.Skipped)
}

func TestIndexer_EmptyTree(t *testing.T) {
	ix, _ := newTestIndexer(t)

	report, err := ix.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Indexed)
	assert.Equal(t, 0, report.Skipped)
}

func TestNewIndexer_RepositoryRequired(t *testing.T) {
	_, err := NewIndexer(nil)
	assert.ErrorIs(t, err, ErrIndexRepositoryRequired)
}

type countingMonitor struct {
	started  int
	indexed  int
	skipped  int
	finished int
}

func (m *countingMonitor) Start(_ string)                   { m.started++ }
func (m *countingMonitor) SidecarIndexed(_ string)          { m.indexed++ }
func (m *countingMonitor) SidecarSkipped(_ string, _ error) { m.skipped++ }
func (m *countingMonitor) Finish(_ *Report)                 { m.finished++ }

func TestIndexer_Monitor(t *testing.T) {
	base := seedArchive(t)
	monitor := &countingMonitor{}
	ix, _ := newTestIndexer(t, WithMonitor(monitor))

	_, err := ix.Run(context.Background(), base)
	require.NoError(t, err)

	assert.Equal(t, 1, monitor.started)
	assert.Equal(t, 3, monitor.indexed)
	assert.Equal(t, 0, monitor.skipped)
	assert.Equal(t, 1, monitor.finished)
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Invoice 1234.PDF", "the invoices")
	assert.Contains(t, tokens, "invoice")
	assert.Contains(t, tokens, "1234")
	assert.Contains(t, tokens, "pdf")
	assert.Contains(t, tokens, "invoices")
	assert.NotContains(t, tokens, "the")
}
