package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lifesync/internal/client/migrations"
	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
	"github.com/dmitrijs2005/lifesync/internal/schema"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local mirror tables and the metadata store.
type Repositories struct {
	Metadata           metadata.Repository
	Books              records.Repository[models.Book]
	JapaneseActivities records.Repository[models.JapaneseActivity]
	Foods              records.Repository[models.Food]
	MealEntries        records.Repository[models.MealEntry]
	SportActivities    records.Repository[models.SportActivity]
	WeightEntries      records.Repository[models.WeightEntry]
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite mirror at dsn and migrates it.
//
// The pool is limited to one connection: SQLite serializes writers anyway,
// and an in-memory dsn would otherwise give every connection its own empty
// database.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}
	return db, nil
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata:           metadata.NewSQLiteRepository(db),
		Books:              records.NewSQLiteRepository[models.Book](db, schema.Books),
		JapaneseActivities: records.NewSQLiteRepository[models.JapaneseActivity](db, schema.JapaneseActivities),
		Foods:              records.NewSQLiteRepository[models.Food](db, schema.Foods),
		MealEntries:        records.NewSQLiteRepository[models.MealEntry](db, schema.MealEntries),
		SportActivities:    records.NewSQLiteRepository[models.SportActivity](db, schema.SportActivities),
		WeightEntries:      records.NewSQLiteRepository[models.WeightEntry](db, schema.WeightEntries),
	}
}
