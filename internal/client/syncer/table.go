package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
)

// PendingQueryable is the push-side view of a local table.
type PendingQueryable[T models.Entity] interface {
	QueryPending(ctx context.Context) ([]T, error)
	ClearPendingFlagAt(ctx context.Context, id string, updatedAt time.Time) (bool, error)
}

// BulkUpsertable applies a pulled batch.
type BulkUpsertable[T models.Entity] interface {
	BulkUpsert(ctx context.Context, items []T) error
}

// DeletableByID applies pulled tombstones.
type DeletableByID interface {
	DeleteByIDs(ctx context.Context, ids []string) error
}

// LocalTable is everything a sync pass needs from one local table.
type LocalTable[T models.Entity] interface {
	Schema() schema.Table
	PendingQueryable[T]
	BulkUpsertable[T]
	DeletableByID
}

type tableStats struct {
	pushed  int
	skipped int
	pulled  int
	applied int
	deleted int
}

// Table is a local table bound to its entity type, ready for the engine.
type Table struct {
	schema schema.Table
	push   func(ctx context.Context, e *Engine, userID string) (tableStats, error)
	pull   func(ctx context.Context, e *Engine, userID string, since *time.Time) (tableStats, error)
}

// Bind erases the entity type of t so tables of different entities can be
// synchronized side by side.
func Bind[T models.Entity](t LocalTable[T]) Table {
	return Table{
		schema: t.Schema(),
		push: func(ctx context.Context, e *Engine, userID string) (tableStats, error) {
			return pushTable(ctx, e, t, userID)
		},
		pull: func(ctx context.Context, e *Engine, userID string, since *time.Time) (tableStats, error) {
			return pullTable(ctx, e, t, userID, since)
		},
	}
}

// Name is the local table name.
func (t Table) Name() string {
	return t.schema.Local
}

func pushTable[T models.Entity](ctx context.Context, e *Engine, t LocalTable[T], userID string) (tableStats, error) {
	var stats tableStats
	sch := t.Schema()

	pending, err := t.QueryPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("query pending %s: %w", sch.Local, err)
	}

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("push %s: %w", sch.Local, err)
		}
		meta := item.Meta()

		row, err := remoteRow(sch, item, userID)
		if err != nil {
			e.log.Warn(ctx, "skipping malformed record", "table", sch.Local, "id", meta.ID, "error", err)
			stats.skipped++
			continue
		}

		known := true
		if meta.Deleted() {
			known, err = e.remote.Delete(ctx, sch.Remote, row)
		} else {
			err = e.remote.Upsert(ctx, sch.Remote, row)
		}
		if err != nil {
			if IsTransportError(err) {
				return stats, fmt.Errorf("push %s: %w", sch.Local, err)
			}
			e.log.Warn(ctx, "remote rejected record", "table", sch.Local, "id", meta.ID, "error", err)
			stats.skipped++
			continue
		}

		// The remote never stored this id, so no pull will ever bring the
		// tombstone back to be reaped. Drop it now.
		if !known {
			if err := t.DeleteByIDs(ctx, []string{meta.ID}); err != nil {
				e.log.Error(ctx, "failed to drop unsynced tombstone", "table", sch.Local, "id", meta.ID, "error", err)
				continue
			}
			stats.pushed++
			continue
		}

		cleared, err := t.ClearPendingFlagAt(ctx, meta.ID, meta.UpdatedAt)
		if err != nil {
			e.log.Error(ctx, "failed to clear pending flag", "table", sch.Local, "id", meta.ID, "error", err)
			continue
		}
		if !cleared {
			e.log.Debug(ctx, "record changed during push, kept pending", "table", sch.Local, "id", meta.ID)
		}
		stats.pushed++
	}

	return stats, nil
}

func remoteRow[T models.Entity](sch schema.Table, item T, userID string) (fieldmap.Row, error) {
	rec, err := fieldmap.FromStruct(item)
	if err != nil {
		return nil, err
	}
	row, err := fieldmap.ToRemote(sch, rec)
	if err != nil {
		return nil, err
	}
	row[schema.ColumnUserID] = userID
	return row, nil
}

func pullTable[T models.Entity](ctx context.Context, e *Engine, t LocalTable[T], userID string, since *time.Time) (tableStats, error) {
	var stats tableStats
	sch := t.Schema()

	rows, err := e.remote.Select(ctx, sch.Remote, userID, since)
	if err != nil {
		return stats, fmt.Errorf("pull %s: %w", sch.Local, err)
	}
	stats.pulled = len(rows)
	if len(rows) == 0 {
		return stats, nil
	}

	// Records still pending here failed to push in this pass. A remote copy
	// older than the local edit must not overwrite it.
	pending, err := t.QueryPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("query pending %s: %w", sch.Local, err)
	}
	localEdits := make(map[string]time.Time, len(pending))
	for _, p := range pending {
		localEdits[p.Meta().ID] = p.Meta().UpdatedAt
	}

	var (
		deleted []string
		active  []T
	)
	for _, row := range rows {
		item, err := localItem[T](sch, row)
		if err != nil {
			e.log.Warn(ctx, "skipping malformed remote row", "table", sch.Local, "id", row[schema.ColumnID], "error", err)
			continue
		}
		meta := item.Meta()

		if edited, ok := localEdits[meta.ID]; ok && edited.After(meta.UpdatedAt) {
			e.log.Debug(ctx, "local edit is newer, remote row ignored", "table", sch.Local, "id", meta.ID)
			continue
		}

		if meta.Deleted() {
			deleted = append(deleted, meta.ID)
			continue
		}
		active = append(active, item)
	}

	if err := t.DeleteByIDs(ctx, deleted); err != nil {
		return stats, fmt.Errorf("apply tombstones %s: %w", sch.Local, err)
	}
	if err := t.BulkUpsert(ctx, active); err != nil {
		return stats, fmt.Errorf("apply rows %s: %w", sch.Local, err)
	}
	stats.deleted = len(deleted)
	stats.applied = len(active)

	return stats, nil
}

var errMissingID = errors.New("row has no id")

func localItem[T models.Entity](sch schema.Table, row fieldmap.Row) (T, error) {
	var item T

	rec, err := fieldmap.ToLocal(sch, row)
	if err != nil {
		return item, err
	}
	rec[schema.FieldPendingSync] = false

	if id, _ := rec[schema.FieldID].(string); id == "" {
		return item, fmt.Errorf("%w: %w", fieldmap.ErrMalformedRecord, errMissingID)
	}
	if err := fieldmap.IntoStruct(rec, &item); err != nil {
		return item, err
	}
	return item, nil
}
