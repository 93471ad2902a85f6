// Package records stores the rows of the six synchronized tables in
// PostgreSQL. Rows travel as remote-named maps (fieldmap.Row) and are typed
// per column with the kinds declared in package schema.
package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

type Repository interface {
	// Select returns the user's rows of t, tombstones included, only those
	// updated after since when it is set.
	Select(ctx context.Context, t schema.Table, userID string, since *time.Time) ([]fieldmap.Row, error)
	// Upsert inserts row or replaces the stored row with the same id. A row
	// id owned by another user yields common.ErrorForbidden.
	Upsert(ctx context.Context, t schema.Table, userID string, row fieldmap.Row) error
	// Tombstone marks a row deleted. It reports whether a row was marked.
	Tombstone(ctx context.Context, t schema.Table, userID, id string, deletedAt, updatedAt time.Time) (bool, error)
	// PurgeTombstones removes tombstones whose updated_at is before the
	// given instant.
	PurgeTombstones(ctx context.Context, t schema.Table, before time.Time) (int64, error)
}
