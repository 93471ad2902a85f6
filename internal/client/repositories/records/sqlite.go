package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

// deleteBatchSize bounds the number of placeholders per DELETE statement.
const deleteBatchSize = 500

// SQLiteRepository implements Repository on a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository[T models.Entity] struct {
	db    dbx.DBTX
	table schema.Table
}

// NewSQLiteRepository binds a repository to the local table of t.
func NewSQLiteRepository[T models.Entity](db dbx.DBTX, t schema.Table) *SQLiteRepository[T] {
	return &SQLiteRepository[T]{db: db, table: t}
}

func (r *SQLiteRepository[T]) Schema() schema.Table {
	return r.table
}

type envelopeColumns struct {
	id        string
	data      string
	pending   bool
	updatedAt string
	deletedAt any
}

func encode[T models.Entity](v T) (envelopeColumns, error) {
	meta := v.Meta()
	if meta.ID == "" {
		return envelopeColumns{}, fmt.Errorf("%w: empty id", fieldmap.ErrMalformedRecord)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return envelopeColumns{}, fmt.Errorf("failed to encode %s: %w", meta.ID, err)
	}

	cols := envelopeColumns{
		id:        meta.ID,
		data:      string(data),
		pending:   meta.PendingSync,
		updatedAt: fieldmap.FormatTime(meta.UpdatedAt),
	}
	if meta.DeletedAt != nil {
		cols.deletedAt = fieldmap.FormatTime(*meta.DeletedAt)
	}
	return cols, nil
}

func (r *SQLiteRepository[T]) Insert(ctx context.Context, v T) error {
	c, err := encode(v)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, data, pending_sync, updated_at, deleted_at) VALUES (?, ?, ?, ?, ?)`, r.table.Local)
	if _, err := r.db.ExecContext(ctx, query, c.id, c.data, c.pending, c.updatedAt, c.deletedAt); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.table.Local, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) Put(ctx context.Context, v T) error {
	return r.put(ctx, r.db, v)
}

func (r *SQLiteRepository[T]) put(ctx context.Context, db dbx.DBTX, v T) error {
	c, err := encode(v)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, data, pending_sync, updated_at, deleted_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			pending_sync = excluded.pending_sync,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`, r.table.Local)
	if _, err := db.ExecContext(ctx, query, c.id, c.data, c.pending, c.updatedAt, c.deletedAt); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", r.table.Local, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var (
		zero T
		data string
	)

	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ? AND deleted_at IS NULL`, r.table.Local)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s[%s]: %w", r.table.Local, id, common.ErrorNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to get %s[%s]: %w", r.table.Local, id, err)
	}

	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return zero, fmt.Errorf("failed to decode %s[%s]: %w", r.table.Local, id, err)
	}
	return v, nil
}

func (r *SQLiteRepository[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE deleted_at IS NULL ORDER BY rowid`, r.table.Local)
	return r.query(ctx, query)
}

func (r *SQLiteRepository[T]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	if _, ok := r.table.ByLocal(field); !ok {
		return nil, fmt.Errorf("unknown field %s.%s: %w", r.table.Local, field, common.ErrorValidation)
	}

	query := fmt.Sprintf(`
		SELECT data FROM %s
		WHERE deleted_at IS NULL AND json_extract(data, '$.' || ?) = ?
		ORDER BY rowid
	`, r.table.Local)
	return r.query(ctx, query, field, value)
}

func (r *SQLiteRepository[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, v := range all {
		if pred(v) {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *SQLiteRepository[T]) QueryPending(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE pending_sync = 1 ORDER BY rowid`, r.table.Local)
	return r.query(ctx, query)
}

func (r *SQLiteRepository[T]) ClearPendingFlag(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET pending_sync = 0, data = json_set(data, '$.pendingSync', json('false'))
		WHERE id = ?
	`, r.table.Local)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to clear pending flag %s[%s]: %w", r.table.Local, id, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) ClearPendingFlagAt(ctx context.Context, id string, updatedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET pending_sync = 0, data = json_set(data, '$.pendingSync', json('false'))
		WHERE id = ? AND updated_at = ?
	`, r.table.Local)
	res, err := r.db.ExecContext(ctx, query, id, fieldmap.FormatTime(updatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to clear pending flag %s[%s]: %w", r.table.Local, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository[T]) BulkUpsert(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}

	upsertAll := func(ctx context.Context, tx dbx.DBTX) error {
		for _, v := range items {
			if err := r.put(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	}

	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, upsertAll)
	}
	return upsertAll(ctx, r.db)
}

func (r *SQLiteRepository[T]) DeleteByIDs(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		batch := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, r.table.Local, placeholders)
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", r.table.Local, err)
		}
	}
	return nil
}

func (r *SQLiteRepository[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.table.Local, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table.Local, err)
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", r.table.Local, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.table.Local, err)
	}
	return result, nil
}
