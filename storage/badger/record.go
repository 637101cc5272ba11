package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// RecordRepository implements storage.RecordRepository for one collection in BadgerDB.
type RecordRepository struct {
	backend    *Backend
	collection core.Collection
	keys       keyspace
	idSeq      *badger.Sequence
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a repository for the given collection.
func NewRecordRepository(backend *Backend, collection core.Collection) (*RecordRepository, error) {
	keys, err := keyspaceFor(collection)
	if err != nil {
		return nil, err
	}

	idSeq, err := backend.GetSequence(keys.seq)
	if err != nil {
		return nil, err
	}

	return &RecordRepository{
		backend:    backend,
		collection: collection,
		keys:       keys,
		idSeq:      idSeq,
	}, nil
}

// Collection reports which collection this repository holds.
func (r *RecordRepository) Collection() core.Collection {
	return r.collection
}

// Close releases the ID sequence.
func (r *RecordRepository) Close() error {
	return r.idSeq.Release()
}

// AddRecords adds one or more records to storage.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)

			now := time.Now().UTC()
			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			record.UpdatedAt = now

			if err := tx.Set(r.keys.recordKey(record.Id), storage.MarshalRecord(record)); err != nil {
				return err
			}
			createdKey := r.keys.createdKey(record.CreatedAt, record.Id)
			if err := tx.Set(createdKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateRecords updates existing records.
func (r *RecordRepository) UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := r.keys.recordKey(record.Id)

			old, err := r.readRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if record.CreatedAt.IsZero() {
				record.CreatedAt = old.CreatedAt
			}
			record.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return err
			}

			// Move the created-at index entry if the creation time changed
			if !old.CreatedAt.Equal(record.CreatedAt) {
				if err := tx.Delete(r.keys.createdKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
				newKey := r.keys.createdKey(record.CreatedAt, record.Id)
				if err := tx.Set(newKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteRecords removes records by their IDs.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := r.keys.recordKey(id)

			record, err := r.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(r.keys.createdKey(record.CreatedAt, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	var result *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRecord(tx, r.keys.recordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple records by their IDs.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	var result []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readRecord(tx, r.keys.recordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetRecentRecords retrieves the newest records, ordered by CreatedAt descending.
func (r *RecordRepository) GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = r.keys.created

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(r.keys.createdSeekEnd()); iter.ValidForPrefix(r.keys.created) && len(results) < limit; iter.Next() {
			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readRecord(tx, r.keys.recordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// FindMatching scans the collection in ID order and returns the first
// limit records whose title or description contains the pattern.
func (r *RecordRepository) FindMatching(ctx context.Context, pattern storage.Pattern, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = r.keys.record
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			if pattern.MatchesRecord(record) {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// readRecord reads a record from the transaction.
// Returns nil, nil if the key doesn't exist.
func (r *RecordRepository) readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}
