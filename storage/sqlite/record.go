package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

const recordColumns = "id, title, description, status, created_at, updated_at"

// RecordRepository implements storage.RecordRepository for one SQLite table.
type RecordRepository struct {
	store      *Store
	collection core.Collection
	table      string
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// Collection reports which collection this repository holds.
func (r *RecordRepository) Collection() core.Collection {
	return r.collection
}

// Close is a no-op; the Store owns the connection.
func (r *RecordRepository) Close() error {
	return nil
}

// AddRecords inserts records and populates their IDs and timestamps.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.store.write(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+r.table+` (title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, record := range records {
			now := time.Now().UTC()
			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			record.UpdatedAt = now

			result, err := stmt.ExecContext(ctx, record.Title, record.Description, string(record.Status),
				record.CreatedAt.UnixMicro(), record.UpdatedAt.UnixMicro())
			if err != nil {
				return err
			}
			id, err := result.LastInsertId()
			if err != nil {
				return err
			}
			record.Id = core.ID(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateRecords rewrites existing records.
func (r *RecordRepository) UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.store.write(func(tx *sql.Tx) error {
		for _, record := range records {
			old, err := scanOne(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM `+r.table+` WHERE id = ?`, int64(record.Id)))
			if err != nil {
				return err
			}
			if record.CreatedAt.IsZero() {
				record.CreatedAt = old.CreatedAt
			}
			record.UpdatedAt = time.Now().UTC()

			_, err = tx.ExecContext(ctx, `UPDATE `+r.table+` SET title = ?, description = ?, status = ?, created_at = ?, updated_at = ? WHERE id = ?`,
				record.Title, record.Description, string(record.Status),
				record.CreatedAt.UnixMicro(), record.UpdatedAt.UnixMicro(), int64(record.Id))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecords removes records by ID.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.store.write(func(tx *sql.Tx) error {
		for _, id := range ids {
			result, err := tx.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = ?`, int64(id))
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return storage.ErrNotFound
			}
		}
		return nil
	})
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	var record *core.Record
	err := r.store.read(func(db *sql.DB) error {
		var err error
		record, err = scanOne(db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM `+r.table+` WHERE id = ?`, int64(id)))
		return err
	})
	return record, err
}

// GetRecords retrieves the records that exist among ids.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.Record, error) {
	var records []*core.Record
	err := r.store.read(func(db *sql.DB) error {
		for _, id := range ids {
			record, err := scanOne(db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM `+r.table+` WHERE id = ?`, int64(id)))
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// GetRecentRecords retrieves the newest records first.
func (r *RecordRepository) GetRecentRecords(ctx context.Context, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var records []*core.Record
	err := r.store.read(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT `+recordColumns+` FROM `+r.table+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
		if err != nil {
			return err
		}
		records, err = scanAll(rows)
		return err
	})
	return records, err
}

// FindMatching returns up to limit records whose title or description
// contains the pattern, in ID order.
func (r *RecordRepository) FindMatching(ctx context.Context, pattern storage.Pattern, limit int) ([]*core.Record, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	like := pattern.Like()
	var records []*core.Record
	err := r.store.read(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT `+recordColumns+` FROM `+r.table+`
			WHERE `+foldFunc+`(title) LIKE ? ESCAPE '\' OR `+foldFunc+`(description) LIKE ? ESCAPE '\'
			ORDER BY id
			LIMIT ?`, like, like, limit)
		if err != nil {
			return err
		}
		records, err = scanAll(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*core.Record, error) {
	var (
		id                   int64
		status               string
		createdAt, updatedAt int64
		record               core.Record
	)
	if err := row.Scan(&id, &record.Title, &record.Description, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Id = core.ID(id)
	record.Status = core.Status(status)
	record.CreatedAt = time.UnixMicro(createdAt).UTC()
	record.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	return &record, nil
}

func scanOne(row *sql.Row) (*core.Record, error) {
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return record, err
}

func scanAll(rows *sql.Rows) ([]*core.Record, error) {
	defer rows.Close()

	var records []*core.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
