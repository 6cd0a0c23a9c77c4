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


// Package index builds the global search index from an archive tree.
//
// The Indexer walks the {entity}/docs and {entity}/streams subtrees for
// metadata sidecars, parses them concurrently on a worker pool, and upserts
// one entry per content path into the index store. Malformed sidecars are
// logged and skipped; they never abort a run. The archive tree remains the
// source of truth, so the index can be deleted and rebuilt at any time.
package index
