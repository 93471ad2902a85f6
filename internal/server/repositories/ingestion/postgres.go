// Package ingestion provides the PostgreSQL writes behind the ingestion
// endpoint: activity inserts and reading-time bookkeeping on books.
package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LastReadBookID(ctx context.Context, userID string) (string, error) {
	query :=
		`SELECT a.book_id FROM japanese_activities a
		 JOIN books b ON b.id = a.book_id AND b.user_id = a.user_id
		 WHERE a.user_id = $1 AND a.type = 'reading' AND a.book_id IS NOT NULL
		   AND a.deleted_at IS NULL AND b.deleted_at IS NULL
		 ORDER BY a.date DESC, a.created_at DESC
		 LIMIT 1
		 `

	var bookID string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return bookID, nil
}

// AddReadingTime also stamps started_at on a book's first session and moves
// updated_at so that devices pull the new total.
func (r *PostgresRepository) AddReadingTime(ctx context.Context, userID, bookID string, minutes int, at time.Time) (bool, error) {
	query :=
		`UPDATE books SET
			total_reading_time_minutes = total_reading_time_minutes + $3,
			started_at = COALESCE(started_at, $4),
			updated_at = $4
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, bookID, userID, minutes, at.UTC())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) InsertActivity(ctx context.Context, a *models.Activity) error {
	query :=
		`INSERT INTO japanese_activities (id, user_id, type, duration_minutes, new_cards, book_id, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Type, a.DurationMinutes, a.NewCards, a.BookID, a.Date, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
