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


package badger

import (
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// NewMemoryRepositories creates in-memory claims and variations repositories for testing.
// Returns claims, variations, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.RecordRepository, storage.RecordRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	claims, variations, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return claims, variations, backend, nil
}

// NewRepositories creates the claims and variations repositories on an open backend.
func NewRepositories(backend *Backend) (*RecordRepository, *RecordRepository, error) {
	claims, err := NewRecordRepository(backend, core.CollectionClaims)
	if err != nil {
		return nil, nil, err
	}

	variations, err := NewRecordRepository(backend, core.CollectionVariations)
	if err != nil {
		claims.Close()
		return nil, nil, err
	}

	return claims, variations, nil
}
