package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/client"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
)

// RemoteStore is the server side of a sync pass. Rows are keyed by remote
// column names and carry user_id.
type RemoteStore interface {
	// Select returns the user's rows of table, restricted to
	// updated_at > since when since is not nil. Tombstones are included.
	Select(ctx context.Context, table, userID string, since *time.Time) ([]fieldmap.Row, error)
	// Upsert inserts or replaces a row by id. The server stamps updated_at.
	Upsert(ctx context.Context, table string, row fieldmap.Row) error
	// Delete tombstones a row by id and reports whether the remote had it.
	Delete(ctx context.Context, table string, row fieldmap.Row) (bool, error)
	// ServerTime is the clock the remote stamps updated_at with.
	ServerTime(ctx context.Context) (time.Time, error)
}

// IsTransportError reports whether err means the remote could not be
// talked to at all, as opposed to it rejecting one request.
func IsTransportError(err error) bool {
	return errors.Is(err, client.ErrUnavailable) ||
		errors.Is(err, client.ErrUnauthorized) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
