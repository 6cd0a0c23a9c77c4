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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMetadata indicates a DocumentMetadata record failed validation.
	ErrInvalidMetadata = errors.New("invalid document metadata")

	// ErrInvalidIndexEntry indicates an IndexEntry failed validation.
	ErrInvalidIndexEntry = errors.New("invalid index entry")

	// ErrInvalidCategory indicates an unrecognized Category value.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrEmptyEntity indicates the entity field is empty.
	ErrEmptyEntity = errors.New("entity cannot be empty")

	// ErrEmptyMimeType indicates the mimetype field is empty.
	ErrEmptyMimeType = errors.New("mimetype cannot be empty")

	// ErrEmptyContentPath indicates the content path field is empty.
	ErrEmptyContentPath = errors.New("content path cannot be empty")

	// ErrMissingCreatedAt indicates the created_at timestamp is zero.
	ErrMissingCreatedAt = errors.New("created_at timestamp is required")

	// ErrMissingSavedAt indicates the saved_at timestamp is zero.
	ErrMissingSavedAt = errors.New("saved_at timestamp is required")

	// ErrMissingContentHash indicates a content hash is required but absent.
	ErrMissingContentHash = errors.New("content hash is required")

	// ErrUnknownSchemaVersion indicates a sidecar schema version this release
	// does not recognize.
	ErrUnknownSchemaVersion = errors.New("unknown schema version")
)
