package storage

import (
	"context"

	"github.com/poiesic/claimdesk/core"
)

// RecordRepository provides operations for one record collection.
// Implementations must be thread-safe and support concurrent access.
type RecordRepository interface {
	// Collection reports which collection this repository holds.
	Collection() core.Collection

	// AddRecords adds one or more records to storage.
	// Always assigns a new ID from the collection sequence.
	// Sets CreatedAt if not already set, and UpdatedAt.
	// Returns the records with generated IDs and timestamps populated.
	AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// UpdateRecords updates existing records.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// DeleteRecords removes records by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error)

	// GetRecentRecords retrieves up to limit records, newest CreatedAt first.
	GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error)

	// FindMatching returns up to limit records whose title or description
	// contains the pattern, compared case-insensitively.
	// Records are returned in ascending ID order.
	FindMatching(ctx context.Context, pattern Pattern, limit int) ([]*core.Record, error)

	// Close releases resources held by the repository.
	Close() error
}
