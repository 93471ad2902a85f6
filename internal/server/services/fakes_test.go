package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/schema"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/apikeys"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/ingestion"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/records"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/repomanager"
)

var errBoom = errors.New("boom")

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type upsertCall struct {
	table  string
	userID string
	row    fieldmap.Row
}

type tombstoneCall struct {
	table                string
	userID, id           string
	deletedAt, updatedAt time.Time
}

type fakeRecordsRepo struct {
	records.Repository

	selectRows  []fieldmap.Row
	selectSince *time.Time
	upserts     []upsertCall
	upsertErr   error
	tombstones  []tombstoneCall
	purged      map[string]time.Time
	purgeErr    map[string]error
}

func (f *fakeRecordsRepo) Select(ctx context.Context, t schema.Table, userID string, since *time.Time) ([]fieldmap.Row, error) {
	f.selectSince = since
	return f.selectRows, nil
}

func (f *fakeRecordsRepo) Upsert(ctx context.Context, t schema.Table, userID string, row fieldmap.Row) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{table: t.Remote, userID: userID, row: row})
	return nil
}

func (f *fakeRecordsRepo) Tombstone(ctx context.Context, t schema.Table, userID, id string, deletedAt, updatedAt time.Time) (bool, error) {
	f.tombstones = append(f.tombstones, tombstoneCall{t.Remote, userID, id, deletedAt, updatedAt})
	return true, nil
}

func (f *fakeRecordsRepo) PurgeTombstones(ctx context.Context, t schema.Table, before time.Time) (int64, error) {
	if err := f.purgeErr[t.Remote]; err != nil {
		return 0, err
	}
	if f.purged == nil {
		f.purged = map[string]time.Time{}
	}
	f.purged[t.Remote] = before
	return 2, nil
}

type fakeAPIKeysRepo struct {
	apikeys.Repository

	byHash  map[string]*models.APIKey
	getErr  error
	created []*models.APIKey
	touched map[string]time.Time
}

func (f *fakeAPIKeysRepo) Create(ctx context.Context, key *models.APIKey) error {
	f.created = append(f.created, key)
	return nil
}

func (f *fakeAPIKeysRepo) GetByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	key, ok := f.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return key, nil
}

func (f *fakeAPIKeysRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	if f.touched == nil {
		f.touched = map[string]time.Time{}
	}
	f.touched[id] = at
	return nil
}

type fakeIngestionRepo struct {
	ingestion.Repository

	lastRead  string
	lastErr   error
	bumped    map[string]int
	inserted  []*models.Activity
	insertErr error
}

func (f *fakeIngestionRepo) LastReadBookID(ctx context.Context, userID string) (string, error) {
	if f.lastErr != nil {
		return "", f.lastErr
	}
	if f.lastRead == "" {
		return "", common.ErrorNotFound
	}
	return f.lastRead, nil
}

func (f *fakeIngestionRepo) AddReadingTime(ctx context.Context, userID, bookID string, minutes int, at time.Time) (bool, error) {
	if f.bumped == nil {
		f.bumped = map[string]int{}
	}
	f.bumped[bookID] += minutes
	return true, nil
}

func (f *fakeIngestionRepo) InsertActivity(ctx context.Context, a *models.Activity) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, a)
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	r *fakeRecordsRepo
	k *fakeAPIKeysRepo
	i *fakeIngestionRepo
}

func (m *fakeRepoManager) Records(dbx.DBTX) records.Repository     { return m.r }
func (m *fakeRepoManager) APIKeys(dbx.DBTX) apikeys.Repository     { return m.k }
func (m *fakeRepoManager) Ingestion(dbx.DBTX) ingestion.Repository { return m.i }

func newFakeManager() *fakeRepoManager {
	return &fakeRepoManager{r: &fakeRecordsRepo{}, k: &fakeAPIKeysRepo{}, i: &fakeIngestionRepo{}}
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
