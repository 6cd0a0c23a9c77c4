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


package core

import (
	"fmt"
)

// ValidateMetadata validates a DocumentMetadata record according to schema rules.
//
// Validation rules:
//   - Entity must not be empty
//   - Category must be a recognized value
//   - MimeType must not be empty
//   - CreatedAt must be set
//   - ContentHash must be present when requireHash is true
//   - SchemaVersion must be a recognized layout version (1 or 2, 0 treated
//     as current on assembly)
//
// NOT validated (populated by the writer after validation passes):
//   - SavedAt (stamped at write time)
//   - ContentPath (resolved by the layout)
func ValidateMetadata(md *DocumentMetadata, requireHash bool) error {
	if md == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidMetadata)
	}

	if md.Entity == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrEmptyEntity)
	}

	if _, ok := categoryNames[md.Category]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidMetadata, ErrInvalidCategory, int(md.Category))
	}

	if md.MimeType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrEmptyMimeType)
	}

	if md.CreatedAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrMissingCreatedAt)
	}

	if requireHash && md.ContentHash == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrMissingContentHash)
	}

	if md.SchemaVersion != 0 && !KnownSchemaVersion(md.SchemaVersion) {
		return fmt.Errorf("%w: %w: %d", ErrInvalidMetadata, ErrUnknownSchemaVersion, md.SchemaVersion)
	}

	return nil
}

// ValidateIndexEntry validates the minimal field set the index requires.
//
// Validation rules:
//   - Entity must not be empty
//   - ContentPath must not be empty
//   - SavedAt must be set
func ValidateIndexEntry(entry *IndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidIndexEntry)
	}

	if entry.Entity == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexEntry, ErrEmptyEntity)
	}

	if entry.ContentPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexEntry, ErrEmptyContentPath)
	}

	if entry.SavedAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidIndexEntry, ErrMissingSavedAt)
	}

	return nil
}

// KnownSchemaVersion reports whether a sidecar schema version is one this
// release can read.
func KnownSchemaVersion(v int) bool {
	return v == 1 || v == SchemaVersionCurrent
}
