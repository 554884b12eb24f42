// Copyright 2026 Poiesic Systems
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


// Package storage provides the storage abstraction layer for hobbyfind.
//
// It defines the EntryRepository interface that decouples the vector index
// from its persistence backend, so BadgerDB, in-memory, or future backends
// can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the storage.EntryRepository
// interface rather than concrete types:
//
//	repo, err := badger.NewEntryRepository(backend)  // storage.EntryRepository
//
// This keeps consumers decoupled from BadgerDB specifics and makes tests
// trivially swappable to the in-memory backend.
//
// # Commit Semantics
//
// Backends differ in persistence behavior: some flush on every write, some
// buffer. EntryRepository.Commit papers over the difference: callers invoke
// it after a mutation pass, and backends that persist automatically implement
// it as a no-op.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
