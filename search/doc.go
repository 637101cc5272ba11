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


// Package search implements the global free-text search over claims and
// variations.
//
// A query runs through four stages:
//   - Normalization: blank queries short-circuit with no reads; anything else
//     becomes the case-insensitive substring pattern %lower(query)%
//   - Fetch: the claims and variations collections are read concurrently,
//     each limited to a handful of rows (5 by default)
//   - Merge: rows are tagged with their result type and module label, claims
//     first, then variations
//   - Ranking: a stable sort puts exact title matches first, then titles that
//     start with the query, then everything else in merged order
//
// Search returns a tagged Outcome so callers can tell "no matches" from "the
// read failed". GlobalSearch keeps the fail-soft contract of the search box:
// any failure is logged and reported as an empty result.
package search
