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


// Package repository implements the on-disk archive: deterministic path
// layout, sanitization, and the atomic content+metadata write path.
//
// # Layout
//
// Content lands under a base directory at paths derived purely from the
// write request, never from filesystem state:
//
//	{entity}/docs/{YYYY}/{YYYY-MM-DD}-{slug}.{ext}           documents
//	{entity}/streams/{stream/path}/{YYYY}/{date}-{slug}.{ext} streams
//
// Layout version 1 is the legacy scheme without the {YYYY} bucket. The year
// comes from the caller-supplied timestamp, so re-archiving historical
// content is stable across runs.
//
// # Write protocol
//
// Writer validates metadata before touching the filesystem, then publishes
// content via a same-directory temp file, fsync, and rename; the metadata
// sidecar follows the same protocol only after the content rename succeeds.
// A reader (including the indexer) therefore never observes a partial final
// file, and a sidecar's presence implies its content file is complete.
//
// # Errors
//
// The write path reports structured *Error values tagged validation, write,
// or path. Match them with errors.Is against ErrValidation, ErrWrite, and
// ErrPath.
package repository
