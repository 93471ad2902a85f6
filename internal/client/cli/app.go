package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/client"
	"github.com/dmitrijs2005/lifesync/internal/client/config"
	"github.com/dmitrijs2005/lifesync/internal/client/services"
	"github.com/dmitrijs2005/lifesync/internal/client/syncer"
	"github.com/dmitrijs2005/lifesync/internal/filex"
	"github.com/dmitrijs2005/lifesync/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Remote is the server as seen by the client: a sync target that can be
// probed for reachability.
type Remote interface {
	syncer.RemoteStore
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	remote Remote

	engine    *syncer.Engine
	debouncer *syncer.Debouncer

	books     services.BookService
	study     services.StudyService
	nutrition services.NutritionService
	sport     services.SportService
	weight    services.WeightService

	mu     sync.Mutex
	mode   Mode
	closed bool

	// background passes started by the debouncer or the watcher
	bg sync.WaitGroup

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp opens the local mirror and connects the gRPC client.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := client.NewGRPCClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := newApp(c, log, db, remote, os.Stdin, os.Stdout)
	if err != nil {
		_ = remote.Close()
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

var errNoUser = errors.New("user id is not configured (use -u or user_id)")

func newApp(c *config.Config, log logging.Logger, db *sql.DB, remote Remote, in io.Reader, out io.Writer) (*App, error) {
	if c.UserID == "" {
		return nil, errNoUser
	}

	a := &App{
		config: c,
		log:    log.With("module", "cli"),
		db:     db,
		remote: remote,
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}

	repos := client.NewRepositories(db)
	a.engine = syncer.New(remote, repos.Metadata, syncer.TablesFrom(repos), log, syncer.Options{
		StaleAfter: c.StaleAfter,
		Timeout:    c.SyncTimeout,
	})
	a.debouncer = syncer.NewDebouncer(c.SyncDebounce, a.goSync)

	deps := services.Deps{
		UserID:  c.UserID,
		Trigger: a.debouncer,
		Now:     func() time.Time { return a.now() },
	}
	a.books = services.NewBookService(deps, repos.Books, repos.JapaneseActivities)
	a.study = services.NewStudyService(deps, repos.JapaneseActivities, repos.Books)
	a.nutrition = services.NewNutritionService(deps, repos.Foods, repos.MealEntries)
	a.sport = services.NewSportService(deps, repos.SportActivities)
	a.weight = services.NewWeightService(deps, repos.WeightEntries)

	return a, nil
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode records the connectivity state and reports whether the server just
// became reachable.
func (a *App) setMode(mode Mode) (cameOnline bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mode == mode {
		return false
	}
	a.log.Info(context.Background(), "connectivity changed", "from", string(a.mode), "to", string(mode))
	cameOnline = mode == ModeOnline
	a.mode = mode
	return cameOnline
}

// goSync starts backgroundSync on its own goroutine unless the app is
// shutting down.
func (a *App) goSync(userID string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.bg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.bg.Done()
		a.backgroundSync(userID)
	}()
}

// backgroundSync runs one pass outside the REPL. Offline passes are skipped;
// the watcher starts one as soon as the server is back.
func (a *App) backgroundSync(userID string) {
	if a.getMode() == ModeOffline {
		a.log.Debug(context.Background(), "offline, sync postponed")
		return
	}

	ctx := context.Background()
	res := a.engine.SyncNow(ctx, userID)
	if !res.Success {
		a.log.Warn(ctx, "background sync failed", "error", res.Error)
		return
	}
	a.log.Info(ctx, "background sync finished", "pushed", res.Pushed, "pulled", res.Pulled)
}

// syncIfStale starts a background pass when the watermark is missing or old.
func (a *App) syncIfStale(ctx context.Context) {
	needed, err := a.engine.IsSyncNeeded(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to check sync state", "error", err)
		return
	}
	if needed {
		a.goSync(a.config.UserID)
	}
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
// Each offline-to-online transition starts a sync pass.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	if a.setMode(ModeOnline) {
		a.goSync(a.config.UserID)
	}
}

// Run starts the background machinery and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer a.Close()
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to lifesync (type 'help' for commands)")

	a.checkOnline(ctx)
	a.syncIfStale(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close stops scheduled syncs, waits for running ones and releases the
// database and the connection.
func (a *App) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.debouncer.Close()
	a.bg.Wait()

	if err := a.remote.Close(); err != nil {
		a.log.Warn(context.Background(), "failed to close connection", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "failed to close database", "error", err)
	}
}

func (a *App) getStatus() string {
	s := a.config.UserID
	if m := a.getMode(); m != ModeUnknown {
		s += " " + string(m)
	}

	st := a.engine.Status()
	switch st.State {
	case syncer.StateSyncing:
		s += " syncing"
	case syncer.StateError:
		s += " sync-error"
	}
	return fmt.Sprintf("(%s)", s)
}
