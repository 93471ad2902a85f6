package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/logging"
)

// TombstonePurger removes soft-deleted rows older than a retention period.
type TombstonePurger interface {
	PurgeTombstones(ctx context.Context, retention time.Duration) (int64, error)
}

// PurgeJob returns a job that drops tombstones older than retention. Devices
// that stay offline for longer than retention will not learn about those
// deletions.
func PurgeJob(p TombstonePurger, retention time.Duration, l logging.Logger) func(context.Context) {
	return func(ctx context.Context) {
		n, err := p.PurgeTombstones(ctx, retention)
		if err != nil {
			l.Error(ctx, "tombstone purge failed", "purged", n, "error", err)
			return
		}
		l.Info(ctx, "tombstones purged", "purged", n, "retention", retention.String())
	}
}
