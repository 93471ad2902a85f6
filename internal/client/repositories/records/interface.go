// Package records is the local mirror: one SQLite table per synchronized
// entity, each row holding the entity as a JSON document next to the
// envelope columns sync needs to query on.
package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

// Repository is the local table of one entity type.
//
// Application reads (GetByID, List, FindBy, Filter) never return
// soft-deleted records. The sync primitives (QueryPending, ClearPendingFlag*,
// BulkUpsert, DeleteByIDs) see everything.
type Repository[T models.Entity] interface {
	// Schema describes the table.
	Schema() schema.Table

	// Insert adds a new record and fails if the id already exists.
	Insert(ctx context.Context, v T) error

	// Put inserts or replaces a record by id.
	Put(ctx context.Context, v T) error

	// GetByID returns a live record or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (T, error)

	// List returns all live records in insertion order.
	List(ctx context.Context) ([]T, error)

	// FindBy returns live records whose field equals value.
	FindBy(ctx context.Context, field string, value any) ([]T, error)

	// Filter returns live records accepted by pred.
	Filter(ctx context.Context, pred func(T) bool) ([]T, error)

	// QueryPending returns every record with pendingSync set, tombstones
	// included.
	QueryPending(ctx context.Context) ([]T, error)

	// ClearPendingFlag resets pendingSync for id. Missing ids are ignored.
	ClearPendingFlag(ctx context.Context, id string) error

	// ClearPendingFlagAt resets pendingSync only if the stored record still
	// has the given updatedAt, so an edit made while a push was in flight
	// stays pending. It reports whether the flag was cleared.
	ClearPendingFlagAt(ctx context.Context, id string, updatedAt time.Time) (bool, error)

	// BulkUpsert inserts or replaces records by id in one transaction.
	// pendingSync is stored exactly as supplied.
	BulkUpsert(ctx context.Context, items []T) error

	// DeleteByIDs physically removes records. Unknown ids are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}
