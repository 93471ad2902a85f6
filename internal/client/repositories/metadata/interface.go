// Package metadata stores small key/value facts about the local mirror,
// most importantly the sync watermark.
package metadata

import (
	"context"
)

// KeyLastSyncedAt holds the start time of the last fully successful sync
// pass as an ISO-8601 UTC string.
const KeyLastSyncedAt = "lastSyncedAt"

type Repository interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	// SetIfGreater stores value only when the key is absent or its current
	// value sorts lower. It reports whether the value was written.
	SetIfGreater(ctx context.Context, key string, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}
