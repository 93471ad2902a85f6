package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// Table and column names come from package schema, never from callers.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// columns lists the stored columns of t in statement order: id, user_id,
// then the rest of the envelope and the domain columns.
func columns(t schema.Table) []schema.Column {
	cols := []schema.Column{{Local: schema.FieldID, Remote: schema.ColumnID, Kind: schema.KindString}}
	cols = append(cols, schema.Column{Remote: schema.ColumnUserID, Kind: schema.KindString})
	for _, c := range t.Columns() {
		if c.Remote != schema.ColumnID {
			cols = append(cols, c)
		}
	}
	return cols
}

func names(cols []schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Remote
	}
	return out
}

func upsertQuery(t schema.Table) string {
	cols := columns(t)
	placeholders := make([]string, len(cols))
	sets := make([]string, 0, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c.Remote != schema.ColumnID && c.Remote != schema.ColumnUserID {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c.Remote, c.Remote))
		}
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET %s
		WHERE %s.user_id = EXCLUDED.user_id`,
		t.Remote, strings.Join(names(cols), ", "), strings.Join(placeholders, ", "),
		strings.Join(sets, ", "), t.Remote)
}

// Upsert stores row for userID. The row's own user_id, if any, is not
// consulted; unknown columns are ignored.
func (r *PostgresRepository) Upsert(ctx context.Context, t schema.Table, userID string, row fieldmap.Row) error {
	cols := columns(t)
	args := make([]any, len(cols))
	for i, c := range cols {
		if c.Remote == schema.ColumnUserID {
			args[i] = userID
			continue
		}
		v, err := toDB(c, row[c.Remote])
		if err != nil {
			return err
		}
		args[i] = v
	}
	if id, _ := args[0].(string); id == "" {
		return fmt.Errorf("%w: %s: empty id", common.ErrorValidation, t.Remote)
	}

	res, err := r.db.ExecContext(ctx, upsertQuery(t), args...)
	if err != nil {
		return classify("upsert "+t.Remote, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s %v belongs to another user", common.ErrorForbidden, t.Remote, args[0])
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Select returns rows keyed by remote column names, user_id included,
// ordered by updated_at.
func (r *PostgresRepository) Select(ctx context.Context, t schema.Table, userID string, since *time.Time) ([]fieldmap.Row, error) {
	cols := columns(t)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1", strings.Join(names(cols), ", "), t.Remote)
	args := []any{userID}
	if since != nil {
		query += " AND updated_at > $2"
		args = append(args, since.UTC())
	}
	query += " ORDER BY updated_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select "+t.Remote, err)
	}
	defer rows.Close()

	var result []fieldmap.Row
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(fieldmap.Row, len(cols))
		for i, c := range cols {
			row[c.Remote] = fromDB(c, values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Tombstone(ctx context.Context, t schema.Table, userID, id string, deletedAt, updatedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2`, t.Remote)

	res, err := r.db.ExecContext(ctx, query, id, userID, deletedAt.UTC(), updatedAt.UTC())
	if err != nil {
		return false, classify("tombstone "+t.Remote, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// PurgeTombstones removes tombstones last written before the given instant.
// updated_at is stamped by the server when the delete arrives, so retention
// counts from then rather than from the device's delete time.
func (r *PostgresRepository) PurgeTombstones(ctx context.Context, t schema.Table, before time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE deleted_at IS NOT NULL AND updated_at < $1", t.Remote)

	res, err := r.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, classify("purge "+t.Remote, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
