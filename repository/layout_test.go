package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/core"
)

var layoutCreatedAt = time.Date(2025, 11, 5, 14, 30, 0, 0, time.UTC)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Invoice 1234", "invoice-1234"},
		{"  Weird---Name!!  ", "weird-name"},
		{"already-clean", "already-clean"},
		{"Mixed_Case File.v2", "mixed_case-file.v2"},
		{"Résumé", "rsum"},
		{"!!!", "document"},
		{"", "document"},
		{"...dots...", "dots"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeName_LengthCap(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde "
	}
	got := SanitizeName(long)
	assert.LessOrEqual(t, len(got), 80)
	assert.NotEmpty(t, got)
}

func TestLayout_DocumentPath(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	got, err := l.ContentPath("acme", core.CategoryDocument, "invoices", layoutCreatedAt, "Invoice 1234.PDF", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "acme/docs/2025/2025-11-05-invoice-1234.pdf", got)
}

func TestLayout_DocumentPath_Flat(t *testing.T) {
	l, err := NewLayout(LayoutVersionFlat)
	require.NoError(t, err)

	got, err := l.ContentPath("acme", core.CategoryDocument, "invoices", layoutCreatedAt, "Invoice 1234.PDF", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "acme/docs/2025-11-05-invoice-1234.pdf", got)
}

func TestLayout_StreamPath(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	got, err := l.ContentPath("acme", core.CategoryStream, "slack/general", layoutCreatedAt, "transcript.md", "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, "acme/streams/slack/general/2025/2025-11-05-transcript.md", got)
}

func TestLayout_YearFromTimestamp(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	past := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := l.ContentPath("acme", core.CategoryDocument, "invoices", past, "old.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "acme/docs/2019/2019-02-01-old.txt", got)
}

func TestLayout_RejectsBadNames(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	tests := []struct {
		name     string
		entity   string
		category core.Category
		artifact string
	}{
		{"entity with spaces", "Acme Corp", core.CategoryDocument, "invoices"},
		{"entity traversal", "../evil", core.CategoryDocument, "invoices"},
		{"empty entity", "", core.CategoryDocument, "invoices"},
		{"workflow with slash", "acme", core.CategoryDocument, "a/b"},
		{"absolute stream", "acme", core.CategoryStream, "/etc"},
		{"empty stream segment", "acme", core.CategoryStream, "slack//general"},
		{"stream traversal", "acme", core.CategoryStream, "slack/../general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ContentPath(tt.entity, tt.category, tt.artifact, layoutCreatedAt, "f.txt", "text/plain")
			assert.Error(t, err)
		})
	}
}

func TestLayout_ZeroTimestamp(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	_, err = l.ContentPath("acme", core.CategoryDocument, "invoices", time.Time{}, "f.txt", "text/plain")
	assert.Error(t, err)
}

func TestMetadataPath(t *testing.T) {
	assert.Equal(t,
		"acme/docs/2025/2025-11-05-invoice.meta.json",
		MetadataPath("acme/docs/2025/2025-11-05-invoice.pdf"))
}

func TestLayout_AlternatePathDeterministic(t *testing.T) {
	l, err := NewLayout(LayoutVersionCurrent)
	require.NoError(t, err)

	canonical, err := l.ContentPath("acme", core.CategoryDocument, "invoices", layoutCreatedAt, "Invoice 1234.PDF", "application/pdf")
	require.NoError(t, err)

	alt1, err := l.AlternateContentPath("acme", core.CategoryDocument, "invoices", layoutCreatedAt, "Invoice 1234.PDF", "application/pdf")
	require.NoError(t, err)
	alt2, err := l.AlternateContentPath("acme", core.CategoryDocument, "invoices", layoutCreatedAt, "Invoice 1234.PDF", "application/pdf")
	require.NoError(t, err)

	assert.NotEqual(t, canonical, alt1)
	assert.Equal(t, alt1, alt2)

	suffix := CollisionSuffix(layoutCreatedAt, "invoice-1234")
	assert.Len(t, suffix, 8)
	assert.Contains(t, alt1, "-"+suffix+".")
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mimetype string
		filename string
		want     string
	}{
		{"application/pdf", "whatever", "pdf"},
		{"text/markdown", "t.txt", "md"},
		{"text/plain; charset=utf-8", "t", "txt"},
		{"application/x-custom", "data.XYZ", "xyz"},
		{"application/x-custom", "noext", "bin"},
		{"", "", "bin"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extensionFor(tt.mimetype, tt.filename), "%s / %s", tt.mimetype, tt.filename)
	}
}
