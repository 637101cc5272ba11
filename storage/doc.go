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


// Package storage provides the storage abstraction layer for claimdesk.
//
// This package defines the repository interface that decouples the claim and
// variation record stores from search and import logic. Each collection is
// served by its own RecordRepository, so the two collections can be read
// independently and concurrently.
//
// # Backends
//
//   - storage/badger: BadgerDB key-value store (default)
//   - storage/sqlite: SQLite via modernc.org/sqlite
//
// Use in tests with in-memory storage:
//
//	claims, variations, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Matching
//
// FindMatching takes a Pattern, the normalized %needle% form of a search
// query. A record matches when its title or its description contains the
// needle, ignoring case.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
