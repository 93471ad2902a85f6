// Package syncer drives offline-first synchronization between the local
// SQLite mirror and the remote store.
//
// A pass pushes every pending local record of every table, then pulls the
// rows changed remotely since the last successful pass, then advances the
// watermark to the time the pass started. That time is read from the
// server, which stamps updated_at on every write it receives, so a record
// edited offline is pulled by other devices once it reaches the server no
// matter how old the edit is. Tables are processed concurrently
// and independently; within a table push always precedes pull.
//
// Failure model:
//   - a record the server rejects (or that cannot be translated) is logged
//     and left pending for the next pass;
//   - a transport failure stops that table, the pass reports failure and the
//     watermark stays where it was. Other tables keep their results.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleAfter = 24 * time.Hour
	DefaultTimeout    = 60 * time.Second
)

// Options tunes an Engine. Zero values pick the defaults.
type Options struct {
	// StaleAfter is how old the watermark may get before IsSyncNeeded
	// reports true.
	StaleAfter time.Duration
	// Timeout bounds one pass; hitting it counts as a transport failure.
	Timeout time.Duration
	// Now is the wall clock. Tests inject a fake one.
	Now func() time.Time
}

// Result is the outcome of one pass.
type Result struct {
	Success bool
	// Error is a human-readable reason when Success is false.
	Error string
	// Pushed and Pulled count records sent and rows fetched.
	Pushed int
	Pulled int
}

type Engine struct {
	remote RemoteStore
	meta   metadata.Repository
	tables []Table
	log    logging.Logger
	opts   Options
	flight singleflight.Group
	status *statusTracker
}

func New(remote RemoteStore, meta metadata.Repository, tables []Table, log logging.Logger, opts Options) *Engine {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		remote: remote,
		meta:   meta,
		tables: tables,
		log:    log.With("module", "syncer"),
		opts:   opts,
		status: &statusTracker{},
	}
}

func (e *Engine) now() time.Time {
	return e.opts.Now().UTC().Truncate(time.Millisecond)
}

// SyncNow runs a full pass for userID and reports its outcome. Calls for a
// user that already has a pass in flight wait for it and share its result.
// SyncNow never panics and never returns a Go error.
func (e *Engine) SyncNow(ctx context.Context, userID string) Result {
	v, _, _ := e.flight.Do(userID, func() (any, error) {
		return e.runPass(ctx, userID), nil
	})
	return v.(Result)
}

func (e *Engine) runPass(ctx context.Context, userID string) (res Result) {
	began := e.now()
	var started time.Time
	e.status.begin()

	defer func() {
		if p := recover(); p != nil {
			e.log.Error(ctx, "sync pass panicked", "panic", p)
			res = Result{Error: fmt.Sprintf("sync failed: %v", p)}
		}
		e.status.finish(res, started)
	}()

	ctx, cancel := context.WithTimeout(logging.WithUserID(ctx, userID), e.opts.Timeout)
	defer cancel()

	since, err := e.LastSyncedAt(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to read watermark", "error", err)
		return Result{Error: fmt.Sprintf("sync failed: %v", err)}
	}

	serverNow, err := e.remote.ServerTime(ctx)
	if err != nil {
		e.log.Warn(ctx, "failed to read server time", "error", err)
		return Result{Error: fmt.Sprintf("sync failed: server time: %v", err)}
	}
	started = serverNow.UTC().Truncate(time.Millisecond)

	var (
		g     errgroup.Group
		stats = make([]tableStats, len(e.tables))
		errs  = make([]error, len(e.tables))
	)
	for i, t := range e.tables {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					e.log.Error(ctx, "table sync panicked", "table", t.Name(), "panic", p)
					errs[i] = fmt.Errorf("%s: %v", t.Name(), p)
				}
			}()
			stats[i], errs[i] = e.syncTable(ctx, t, userID, since)
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range stats {
		res.Pushed += s.pushed
		res.Pulled += s.pulled
	}

	if err := errors.Join(errs...); err != nil {
		e.log.Warn(ctx, "sync pass failed", "error", err)
		res.Error = fmt.Sprintf("sync failed: %v", err)
		return res
	}

	advanced, err := e.meta.SetIfGreater(ctx, metadata.KeyLastSyncedAt, fieldmap.FormatTime(started))
	if err != nil {
		e.log.Error(ctx, "failed to store watermark", "error", err)
		res.Error = fmt.Sprintf("sync failed: %v", err)
		return res
	}
	if !advanced {
		e.log.Debug(ctx, "watermark already ahead, left unchanged", "started", started)
	}

	e.log.Info(ctx, "sync pass finished", "pushed", res.Pushed, "pulled", res.Pulled,
		"took", e.opts.Now().Sub(began))
	res.Success = true
	return res
}

func (e *Engine) syncTable(ctx context.Context, t Table, userID string, since *time.Time) (tableStats, error) {
	pushed, err := t.push(ctx, e, userID)
	if err != nil {
		return pushed, err
	}

	pulled, err := t.pull(ctx, e, userID, since)
	pulled.pushed = pushed.pushed
	pulled.skipped = pushed.skipped
	if err != nil {
		return pulled, err
	}

	if pushed.pushed+pushed.skipped+pulled.pulled > 0 {
		e.log.Debug(ctx, "table synced", "table", t.Name(),
			"pushed", pushed.pushed, "skipped", pushed.skipped,
			"pulled", pulled.pulled, "applied", pulled.applied, "deleted", pulled.deleted)
	}
	return pulled, nil
}

// LastSyncedAt returns the watermark, or nil if no pass has ever succeeded.
func (e *Engine) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	raw, ok, err := e.meta.Get(ctx, metadata.KeyLastSyncedAt)
	if err != nil || !ok {
		return nil, err
	}

	t, err := fieldmap.ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", metadata.KeyLastSyncedAt, raw, err)
	}
	return &t, nil
}

// IsSyncNeeded reports whether no pass has ever succeeded or the last one is
// at least StaleAfter old.
func (e *Engine) IsSyncNeeded(ctx context.Context) (bool, error) {
	last, err := e.LastSyncedAt(ctx)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return e.opts.Now().Sub(*last) >= e.opts.StaleAfter, nil
}

// Status returns a snapshot of the sync status.
func (e *Engine) Status() Status {
	return e.status.snapshot()
}
