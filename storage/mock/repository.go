package mock

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// MockRepository is an in-memory test double for storage.RecordRepository.
type MockRepository struct {
	// FindMatchingFunc is called by FindMatching if set.
	// If nil, filters the in-memory records.
	FindMatchingFunc func(ctx context.Context, pattern storage.Pattern, limit int) ([]*core.Record, error)

	collection core.Collection
	mu         sync.Mutex
	records    []*core.Record
	nextID     core.ID
	findCount  atomic.Int64
}

var _ storage.RecordRepository = (*MockRepository)(nil)

// NewMockRepository creates a mock repository holding the given records.
// Records without an ID are assigned one in order.
func NewMockRepository(collection core.Collection, records ...*core.Record) *MockRepository {
	m := &MockRepository{collection: collection}
	m.AddRecords(context.Background(), records...)
	return m
}

// Collection reports which collection this repository holds.
func (m *MockRepository) Collection() core.Collection {
	return m.collection
}

// AddRecords appends records, assigning IDs and timestamps.
func (m *MockRepository) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		if record.Id == 0 {
			m.nextID++
			record.Id = m.nextID
		} else if record.Id > m.nextID {
			m.nextID = record.Id
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		record.UpdatedAt = time.Now().UTC()
		m.records = append(m.records, record)
	}
	return records, nil
}

// UpdateRecords replaces records with matching IDs.
func (m *MockRepository) UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		idx := m.indexOf(record.Id)
		if idx < 0 {
			return nil, storage.ErrNotFound
		}
		record.UpdatedAt = time.Now().UTC()
		m.records[idx] = record
	}
	return records, nil
}

// DeleteRecords removes records by ID.
func (m *MockRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		idx := m.indexOf(id)
		if idx < 0 {
			return storage.ErrNotFound
		}
		m.records = slices.Delete(m.records, idx, idx+1)
	}
	return nil
}

// GetRecord returns the record with the given ID.
func (m *MockRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, storage.ErrNotFound
	}
	return m.records[idx], nil
}

// GetRecords returns the records that exist among ids.
func (m *MockRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*core.Record
	for _, id := range ids {
		if idx := m.indexOf(id); idx >= 0 {
			result = append(result, m.records[idx])
		}
	}
	return result, nil
}

// GetRecentRecords returns up to limit records, newest first.
func (m *MockRepository) GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	m.mu.Lock()
	sorted := slices.Clone(m.records)
	m.mu.Unlock()

	slices.SortStableFunc(sorted, func(a, b *core.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// FindMatching filters the in-memory records, or calls FindMatchingFunc.
func (m *MockRepository) FindMatching(ctx context.Context, pattern storage.Pattern, limit int) ([]*core.Record, error) {
	m.findCount.Add(1)

	if m.FindMatchingFunc != nil {
		return m.FindMatchingFunc(ctx, pattern, limit)
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*core.Record
	for _, record := range m.records {
		if len(result) == limit {
			break
		}
		if pattern.MatchesRecord(record) {
			result = append(result, record)
		}
	}
	return result, nil
}

// Close does nothing.
func (m *MockRepository) Close() error {
	return nil
}

// FindCount returns the number of times FindMatching was called.
func (m *MockRepository) FindCount() int {
	return int(m.findCount.Load())
}

// indexOf finds a record by ID. Must be called with lock held.
func (m *MockRepository) indexOf(id core.ID) int {
	return slices.IndexFunc(m.records, func(r *core.Record) bool {
		return r.Id == id
	})
}
