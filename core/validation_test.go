package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() *DocumentMetadata {
	return &DocumentMetadata{
		Entity:           "acme",
		Category:         CategoryDocument,
		Name:             "invoices",
		MimeType:         "application/pdf",
		ContentHash:      "blake2b:ab12cd34",
		Size:             1024,
		CreatedAt:        time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC),
		OriginalFilename: "Invoice 1234.PDF",
		SchemaVersion:    SchemaVersionCurrent,
	}
}

func TestValidateMetadata_Valid(t *testing.T) {
	require.NoError(t, ValidateMetadata(validMetadata(), true))
}

func TestValidateMetadata_Nil(t *testing.T) {
	err := ValidateMetadata(nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestValidateMetadata_FieldViolations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DocumentMetadata)
		wantErr error
	}{
		{
			name:    "empty entity",
			mutate:  func(md *DocumentMetadata) { md.Entity = "" },
			wantErr: ErrEmptyEntity,
		},
		{
			name:    "invalid category",
			mutate:  func(md *DocumentMetadata) { md.Category = Category(42) },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "zero category",
			mutate:  func(md *DocumentMetadata) { md.Category = 0 },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "empty mimetype",
			mutate:  func(md *DocumentMetadata) { md.MimeType = "" },
			wantErr: ErrEmptyMimeType,
		},
		{
			name:    "zero created_at",
			mutate:  func(md *DocumentMetadata) { md.CreatedAt = time.Time{} },
			wantErr: ErrMissingCreatedAt,
		},
		{
			name:    "unknown schema version",
			mutate:  func(md *DocumentMetadata) { md.SchemaVersion = 7 },
			wantErr: ErrUnknownSchemaVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := validMetadata()
			tt.mutate(md)

			err := ValidateMetadata(md, true)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMetadata)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateMetadata_HashRequirement(t *testing.T) {
	md := validMetadata()
	md.ContentHash = ""

	// Hash optional when hashing is disabled.
	require.NoError(t, ValidateMetadata(md, false))

	err := ValidateMetadata(md, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingContentHash)
}

func TestValidateMetadata_LegacySchemaVersion(t *testing.T) {
	md := validMetadata()
	md.SchemaVersion = 1
	require.NoError(t, ValidateMetadata(md, true))
}

func TestValidateIndexEntry(t *testing.T) {
	now := time.Now().UTC()

	valid := &IndexEntry{
		Entity:      "acme",
		ContentPath: "acme/docs/2025/2025-11-05-invoice.pdf",
		SavedAt:     now,
	}
	require.NoError(t, ValidateIndexEntry(valid))

	tests := []struct {
		name    string
		entry   *IndexEntry
		wantErr error
	}{
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidIndexEntry,
		},
		{
			name:    "missing entity",
			entry:   &IndexEntry{ContentPath: "p", SavedAt: now},
			wantErr: ErrEmptyEntity,
		},
		{
			name:    "missing content path",
			entry:   &IndexEntry{Entity: "acme", SavedAt: now},
			wantErr: ErrEmptyContentPath,
		},
		{
			name:    "missing saved_at",
			entry:   &IndexEntry{Entity: "acme", ContentPath: "p"},
			wantErr: ErrMissingSavedAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndexEntry(tt.entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKnownSchemaVersion(t *testing.T) {
	assert.True(t, KnownSchemaVersion(1))
	assert.True(t, KnownSchemaVersion(2))
	assert.False(t, KnownSchemaVersion(0))
	assert.False(t, KnownSchemaVersion(3))
}
