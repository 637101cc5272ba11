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


package storage

import "errors"

var (
	// ErrNotFound is returned when a record ID does not exist in its collection.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed is returned by every operation after Close.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery is returned for a non-positive read limit.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed wraps a stored value that could not be decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData wraps a stored value that ended before decoding finished.
	ErrTruncatedData = errors.New("truncated data")
)
