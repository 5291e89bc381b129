// Package server wires the registry, sync orchestrator and source
// aggregator together and serves them over gRPC until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/graviox/roundcube-carddav/internal/buildinfo"
	"github.com/graviox/roundcube-carddav/internal/cryptox"
	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/server/addressbook"
	"github.com/graviox/roundcube-carddav/internal/server/blobstore"
	"github.com/graviox/roundcube-carddav/internal/server/carddav"
	"github.com/graviox/roundcube-carddav/internal/server/config"
	"github.com/graviox/roundcube-carddav/internal/server/repositories/repomanager"
	"github.com/graviox/roundcube-carddav/internal/server/services"

	gs "github.com/graviox/roundcube-carddav/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *services.RegistryService
	settings *services.SettingsService
	sources  *services.SourceService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	l, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := l.With("version", buildinfo.Version)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, logger logging.Logger) (*App, error) {
	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	cipher, err := cryptox.NewAESCipher(c.CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	var archive addressbook.Archive
	if c.ArchiveEnabled() {
		s3a, err := blobstore.NewS3Archive(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		archive = s3a
		logger.Info(ctx, "vCard archive enabled", "bucket", c.S3Bucket)
	}

	store := addressbook.NewStore(db, rm, archive, logger)
	factory := carddav.NewFactory(davHTTPClient(c), logger)

	registry := services.NewRegistryService(db, rm, cipher, logger)
	syncer := services.NewSyncService(registry, factory, store, c.SyncWorkers, c.SyncTimeout, logger)
	settings := services.NewSettingsService(registry, syncer, factory, store, c.CheckTimeout, logger)
	sources := services.NewSourceService(registry, store)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		registry: registry,
		settings: settings,
		sources:  sources,
	}, nil
}

// davHTTPClient bounds every request to a CardDAV server on top of the
// per-pass context deadline.
func davHTTPClient(c *config.Config) *http.Client {
	return &http.Client{Timeout: c.HTTPTimeout}
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
	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.registry, app.settings, app.sources, app.config.SecretKey)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
