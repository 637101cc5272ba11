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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRecord validates a claim or variation Record according to domain rules.
//
// Validation rules:
//   - Title must not be blank
//   - Status must be one of the known workflow states
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - Description (optional)
//   - ID (0 is valid, assigned from database sequences)
//   - CreatedAt zero value (filled in on insert)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if strings.TrimSpace(record.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyTitle)
	}

	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if !record.CreatedAt.IsZero() && !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus validates that a Status has a known value.
func ValidateStatus(status Status) error {
	switch status {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusClosed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
}

// ParseCollection maps a collection name to a Collection.
func ParseCollection(name string) (Collection, error) {
	switch Collection(strings.ToLower(strings.TrimSpace(name))) {
	case CollectionClaims:
		return CollectionClaims, nil
	case CollectionVariations:
		return CollectionVariations, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
