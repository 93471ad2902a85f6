// Package services contains server-side business logic: the sync protocol,
// the ingestion endpoint and its API keys.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/repomanager"
)

// SyncService serves the remote side of the sync protocol: per-user reads,
// upserts by id and tombstoning deletes over the six tables.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager) *SyncService {
	return &SyncService{db: db, repomanager: m, now: time.Now}
}

func lookupTable(name string) (schema.Table, error) {
	t, ok := schema.ByRemoteName(name)
	if !ok {
		return schema.Table{}, fmt.Errorf("%w: unknown table %q", common.ErrorValidation, name)
	}
	return t, nil
}

// CheckOwner fails with common.ErrorForbidden when a request names a user
// other than the authenticated one. An empty owner means the caller's own.
func CheckOwner(userID, owner string) error {
	if owner != "" && owner != userID {
		return fmt.Errorf("%w: user %q cannot access rows of %q", common.ErrorForbidden, userID, owner)
	}
	return nil
}

func rowOwner(row fieldmap.Row) string {
	owner, _ := row[schema.ColumnUserID].(string)
	return owner
}

func (s *SyncService) Select(ctx context.Context, userID, table string, since *time.Time) ([]fieldmap.Row, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Records(s.db).Select(ctx, t, userID, since)
}

func (s *SyncService) Upsert(ctx context.Context, userID, table string, row fieldmap.Row) error {
	t, err := lookupTable(table)
	if err != nil {
		return err
	}
	if err := CheckOwner(userID, rowOwner(row)); err != nil {
		return err
	}

	stamped := maps.Clone(row)
	if stamped == nil {
		stamped = fieldmap.Row{}
	}
	stamped[schema.ColumnUpdatedAt] = fieldmap.FormatTime(s.stamp())
	return s.repomanager.Records(s.db).Upsert(ctx, t, userID, stamped)
}

// stamp is the server time written to updated_at. Incremental pulls compare
// updated_at with watermarks taken from this clock, so a row written offline
// long ago still sorts after every watermark issued before it arrived. Ping
// reports the same clock rounded down. It is
// rounded up to the wire precision so that it stays strictly after a
// watermark read in the same millisecond.
func (s *SyncService) stamp() time.Time {
	now := s.now().UTC()
	t := now.Truncate(time.Millisecond)
	if t.Before(now) {
		t = t.Add(time.Millisecond)
	}
	return t
}

// Delete tombstones the row's id. deleted_at defaults to the server clock
// when missing; updated_at is always stamped by the server. It reports
// whether a stored row was marked; deleting an id the server never saw is
// not an error.
func (s *SyncService) Delete(ctx context.Context, userID, table string, row fieldmap.Row) (bool, error) {
	t, err := lookupTable(table)
	if err != nil {
		return false, err
	}
	if err := CheckOwner(userID, rowOwner(row)); err != nil {
		return false, err
	}

	id, _ := row[schema.ColumnID].(string)
	if id == "" {
		return false, fmt.Errorf("%w: %s: empty id", common.ErrorValidation, t.Remote)
	}

	stamp := s.stamp()
	deletedAt, err := optionalTime(row, schema.ColumnDeletedAt, stamp)
	if err != nil {
		return false, err
	}

	return s.repomanager.Records(s.db).Tombstone(ctx, t, userID, id, deletedAt, stamp)
}

func optionalTime(row fieldmap.Row, column string, fallback time.Time) (time.Time, error) {
	s, ok := row[column].(string)
	if !ok || s == "" {
		return fallback, nil
	}
	t, err := fieldmap.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", common.ErrorValidation, column, err)
	}
	return t, nil
}

// PurgeTombstones removes rows of every table whose delete reached the
// server more than retention ago. A failing table does not stop the others.
func (s *SyncService) PurgeTombstones(ctx context.Context, retention time.Duration) (int64, error) {
	before := s.now().UTC().Add(-retention)
	repo := s.repomanager.Records(s.db)

	var total int64
	var errs []error
	for _, t := range schema.All() {
		n, err := repo.PurgeTombstones(ctx, t, before)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}
