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


package search

import "errors"

var (
	// ErrClaimsRepositoryRequired is returned when a claims repository is not provided.
	ErrClaimsRepositoryRequired = errors.New("claims repository required")

	// ErrVariationsRepositoryRequired is returned when a variations repository is not provided.
	ErrVariationsRepositoryRequired = errors.New("variations repository required")

	// ErrInvalidLimit is returned when the per-collection limit is not positive.
	ErrInvalidLimit = errors.New("limit must be greater than 0")

	// ErrSearchFailed wraps any failure to read a collection during a search.
	ErrSearchFailed = errors.New("search read failed")
)
