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


// Package search provides the query layer over the global index.
//
// The Searcher matches queries as case-insensitive filename substrings or
// as keyword sets against each entry's tokens, with stop-word filtering.
// Results are ordered by recency (saved-at descending), not relevance; the
// score only distinguishes match strength within that ordering.
package search
