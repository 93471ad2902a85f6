package syncer

import (
	"context"
	"database/sql"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/client"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/schema"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

/*************
 * In-memory remote store
 *************/

// fakeRemote stamps updated_at with clock on every write, like the server.
type fakeRemote struct {
	mu    sync.Mutex
	rows  map[string]map[string]fieldmap.Row
	clock *fakeClock

	upserts map[string]int
	selects map[string]int

	failUpsert map[string]error
	failSelect map[string]error
	reject     map[string]error

	// before runs at the start of every call, outside the lock
	before func(ctx context.Context, op, table string) error
}

func newFakeRemote(clock *fakeClock) *fakeRemote {
	return &fakeRemote{
		clock:      clock,
		rows:       map[string]map[string]fieldmap.Row{},
		upserts:    map[string]int{},
		selects:    map[string]int{},
		failUpsert: map[string]error{},
		failSelect: map[string]error{},
		reject:     map[string]error{},
	}
}

func (f *fakeRemote) hook(ctx context.Context, op, table string) error {
	if f.before == nil {
		return nil
	}
	return f.before(ctx, op, table)
}

func (f *fakeRemote) Select(ctx context.Context, table, user string, since *time.Time) ([]fieldmap.Row, error) {
	if err := f.hook(ctx, "select", table); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.selects[table]++
	if err := f.failSelect[table]; err != nil {
		return nil, err
	}

	var out []fieldmap.Row
	for _, row := range f.rows[table] {
		if row[schema.ColumnUserID] != user {
			continue
		}
		if since != nil {
			updated, err := fieldmap.ParseTime(row[schema.ColumnUpdatedAt].(string))
			if err == nil && !updated.After(*since) {
				continue
			}
		}
		out = append(out, maps.Clone(row))
	}
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, table string, row fieldmap.Row) error {
	if err := f.hook(ctx, "upsert", table); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failUpsert[table]; err != nil {
		return err
	}
	id := row[schema.ColumnID].(string)
	if err := f.reject[id]; err != nil {
		return err
	}

	f.upserts[table]++
	if f.rows[table] == nil {
		f.rows[table] = map[string]fieldmap.Row{}
	}
	stored := maps.Clone(row)
	stored[schema.ColumnUpdatedAt] = fieldmap.FormatTime(f.clock.Now())
	f.rows[table][id] = stored
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table string, row fieldmap.Row) (bool, error) {
	if err := f.hook(ctx, "delete", table); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failUpsert[table]; err != nil {
		return false, err
	}
	id := row[schema.ColumnID].(string)
	if err := f.reject[id]; err != nil {
		return false, err
	}

	existing, ok := f.rows[table][id]
	if !ok || existing[schema.ColumnUserID] != row[schema.ColumnUserID] {
		return false, nil
	}
	existing[schema.ColumnDeletedAt] = row[schema.ColumnDeletedAt]
	existing[schema.ColumnUpdatedAt] = fieldmap.FormatTime(f.clock.Now())
	return true, nil
}

func (f *fakeRemote) ServerTime(ctx context.Context) (time.Time, error) {
	if err := f.hook(ctx, "time", ""); err != nil {
		return time.Time{}, err
	}
	return f.clock.Now(), nil
}

func (f *fakeRemote) row(table, id string) (fieldmap.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[table][id]
	return maps.Clone(r), ok
}

func (f *fakeRemote) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[table])
}

/*************
 * Clock
 *************/

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

/*************
 * Device = local mirror + engine
 *************/

type device struct {
	db     *sql.DB
	repos  *client.Repositories
	engine *Engine
}

func newDevice(t *testing.T, remote RemoteStore, clock *fakeClock) *device {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := client.NewRepositories(db)
	engine := New(remote, repos.Metadata, TablesFrom(repos), logging.NewDiscardLogger(), Options{Now: clock.Now})

	return &device{db: db, repos: repos, engine: engine}
}

// rawCount counts rows including tombstones.
func (d *device) rawCount(t *testing.T, table, id string) int {
	t.Helper()
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&n)
	require.NoError(t, err)
	return n
}

func (d *device) watermark(t *testing.T) (string, bool) {
	t.Helper()
	v, ok, err := d.repos.Metadata.Get(context.Background(), "lastSyncedAt")
	require.NoError(t, err)
	return v, ok
}
