package ingestion

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/server/models"
)

// Repository holds the writes of the ingestion endpoint, which bypasses the
// sync protocol and works on the remote tables directly.
type Repository interface {
	// LastReadBookID returns the book of the user's latest reading session,
	// or common.ErrorNotFound.
	LastReadBookID(ctx context.Context, userID string) (string, error)
	// AddReadingTime bumps a book's reading minutes. It reports whether the
	// book was found.
	AddReadingTime(ctx context.Context, userID, bookID string, minutes int, at time.Time) (bool, error)
	InsertActivity(ctx context.Context, a *models.Activity) error
}
