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


// Package storage provides the storage abstraction layer for the search
// index.
//
// It defines the IndexRepository interface that decouples the index store
// from the indexer and query layer, so backends (BadgerDB, in-memory) can be
// swapped. Public constructors in backend packages return the interface:
//
//	repo, err := badger.NewIndexRepository(path)  // storage.IndexRepository
//
// The index is derived data. Deleting the store directory and re-running the
// indexer reproduces it; nothing in this package is the source of truth.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
