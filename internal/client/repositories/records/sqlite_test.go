package records

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/migrations"
	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/schema"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func food(id, name string, pending bool) models.Food {
	return models.Food{
		Syncable:        models.Syncable{ID: id, CreatedAt: base, UpdatedAt: base, PendingSync: pending},
		Name:            name,
		CaloriesPer100g: 100,
	}
}

func TestInsert_ThenGetByID(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	f := food("f1", "Rice", true)
	require.NoError(t, r.Insert(ctx, f))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, f, got)

	require.Error(t, r.Insert(ctx, f), "duplicate id must fail")
}

func TestGetByID_NotFoundAndTombstone(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	_, err := r.GetByID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	f := food("f1", "Rice", true)
	f.SoftDelete(base.Add(time.Minute))
	require.NoError(t, r.Put(ctx, f))

	_, err = r.GetByID(ctx, "f1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPut_Replaces(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, food("f1", "Rice", true)))
	require.NoError(t, r.Put(ctx, food("f1", "Brown rice", false)))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Brown rice", all[0].Name)
	assert.False(t, all[0].PendingSync)
}

func TestReads_HideTombstones(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, food("f1", "Rice", false)))
	gone := food("f2", "Rice", true)
	gone.SoftDelete(base)
	require.NoError(t, r.Put(ctx, gone))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "f1", all[0].ID)

	byName, err := r.FindBy(ctx, "name", "Rice")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "f1", byName[0].ID)

	filtered, err := r.Filter(ctx, func(f models.Food) bool { return true })
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

func TestFindBy_BoolAndUnknownField(t *testing.T) {
	r := NewSQLiteRepository[models.Book](setupDB(t), schema.Books)
	ctx := context.Background()

	done := models.Book{Syncable: models.NewSyncable("b1", base), Title: "Done", Completed: true}
	open := models.Book{Syncable: models.NewSyncable("b2", base), Title: "Open"}
	require.NoError(t, r.Put(ctx, done))
	require.NoError(t, r.Put(ctx, open))

	got, err := r.FindBy(ctx, "completed", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)

	_, err = r.FindBy(ctx, "no_such_field", 1)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestQueryPending_IncludesTombstones(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, food("synced", "A", false)))
	require.NoError(t, r.Put(ctx, food("pending", "B", true)))
	gone := food("deleted", "C", false)
	gone.SoftDelete(base)
	require.NoError(t, r.Put(ctx, gone))

	pending, err := r.QueryPending(ctx)
	require.NoError(t, err)

	ids := []string{}
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"pending", "deleted"}, ids)
}

func TestClearPendingFlag(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, food("f1", "Rice", true)))
	require.NoError(t, r.ClearPendingFlag(ctx, "f1"))
	require.NoError(t, r.ClearPendingFlag(ctx, "f1"))
	require.NoError(t, r.ClearPendingFlag(ctx, "missing"))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.False(t, got.PendingSync, "document must follow the column")

	pending, err := r.QueryPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestClearPendingFlagAt_KeepsNewerEdit(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	f := food("f1", "Rice", true)
	require.NoError(t, r.Put(ctx, f))
	pushed := f.UpdatedAt

	// the user edits the record while the push is in flight
	f.Name = "Jasmine rice"
	f.Touch(base.Add(time.Second))
	require.NoError(t, r.Put(ctx, f))

	cleared, err := r.ClearPendingFlagAt(ctx, "f1", pushed)
	require.NoError(t, err)
	assert.False(t, cleared)

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, got.PendingSync)

	cleared, err = r.ClearPendingFlagAt(ctx, "f1", f.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, cleared)
}

func TestBulkUpsert_KeepsSuppliedPendingFlag(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, food("f1", "Old", true)))

	batch := []models.Food{food("f1", "New", false), food("f2", "Other", false)}
	require.NoError(t, r.BulkUpsert(ctx, batch))
	require.NoError(t, r.BulkUpsert(ctx, nil))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "New", all[0].Name)
	for _, f := range all {
		assert.False(t, f.PendingSync)
	}
}

func TestBulkUpsert_RollsBackOnBadRecord(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	batch := []models.Food{food("f1", "Ok", false), food("", "No id", false)}
	require.Error(t, r.BulkUpsert(ctx, batch))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteByIDs(t *testing.T) {
	r := NewSQLiteRepository[models.Food](setupDB(t), schema.Foods)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Put(ctx, food(id, id, false)))
	}

	require.NoError(t, r.DeleteByIDs(ctx, []string{"a", "c", "never-existed"}))
	require.NoError(t, r.DeleteByIDs(ctx, nil))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

func TestErrorsOnClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository[models.Food](db, schema.Foods)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Put(ctx, food("f1", "x", true)), "failed to upsert into foods")
	_, err := r.List(ctx)
	require.ErrorContains(t, err, "failed to select foods")
	require.ErrorContains(t, r.DeleteByIDs(ctx, []string{"f1"}), "failed to delete from foods")
}
