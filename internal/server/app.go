// Package server wires the lifesync server together: the PostgreSQL remote
// store, the gRPC sync service, the HTTP ingestion endpoint and the
// tombstone purge job. It handles graceful shutdown on SIGINT and SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/server/auth"
	"github.com/dmitrijs2005/lifesync/internal/server/config"
	"github.com/dmitrijs2005/lifesync/internal/server/httpapi"
	"github.com/dmitrijs2005/lifesync/internal/server/ratelimit"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifesync/internal/server/scheduler"
	"github.com/dmitrijs2005/lifesync/internal/server/services"

	gs "github.com/dmitrijs2005/lifesync/internal/server/grpc"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	closers       []io.Closer
	syncService   *services.SyncService
	apiKeyService *services.APIKeyService
	ingestService *services.IngestService
	limiter       ratelimit.Limiter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := repomanager.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app := &App{
		config:        c,
		logger:        logger,
		db:            db,
		closers:       []io.Closer{db},
		syncService:   services.NewSyncService(db, rm),
		apiKeyService: services.NewAPIKeyService(db, rm),
		ingestService: services.NewIngestService(db, rm),
	}

	if c.RedisAddr != "" {
		rc := ratelimit.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		app.closers = append(app.closers, rc)
		app.limiter = ratelimit.NewRedisLimiter(rc, c.RateLimitRequests, c.RateLimitWindow)
		logger.Info(ctx, "using redis rate limiter", "address", c.RedisAddr)
	} else {
		app.limiter = ratelimit.NewMemoryLimiter(c.RateLimitRequests, c.RateLimitWindow)
		logger.Info(ctx, "using in-memory rate limiter")
	}

	return app, nil
}

// Close releases the database and redis connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i].Close())
	}
	return errors.Join(errs...)
}

// MintToken writes a signed access token for c.MintTokenFor to w.
func MintToken(c *config.Config, w io.Writer) error {
	token, err := auth.GenerateToken(c.MintTokenFor, []byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("error generating token: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// MintAPIKey creates an ingestion API key for c.MintAPIKeyFor and writes
// the plain key to w. The key cannot be recovered later.
func (app *App) MintAPIKey(ctx context.Context, w io.Writer) error {
	plain, key, err := app.apiKeyService.Create(ctx, app.config.MintAPIKeyFor, "cli")
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "api key created", "id", key.ID, "user", key.UserID, "prefix", key.Prefix)
	_, err = fmt.Fprintln(w, plain)
	return err
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.syncService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.apiKeyService, app.limiter, app.ingestService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startScheduler(ctx context.Context, cancelFunc context.CancelFunc) {
	r := scheduler.New(app.logger)

	purge := scheduler.PurgeJob(app.syncService, app.config.TombstoneRetention, app.logger.With("job", "tombstone_purge"))
	if _, err := r.Add(ctx, app.config.PurgeSchedule, purge); err != nil {
		app.logger.Error(ctx, "invalid purge schedule", "schedule", app.config.PurgeSchedule, "error", err)
		cancelFunc()
		return
	}

	r.Run(ctx)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startScheduler(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}
