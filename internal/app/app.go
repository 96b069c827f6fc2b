// Package app wires the core together: key bootstrap, database setup, the
// vault service, the command dispatcher, the host channel and the optional
// metrics endpoint.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/auth"
	"github.com/dmitrijs2005/jasmify/internal/commands"
	"github.com/dmitrijs2005/jasmify/internal/config"
	"github.com/dmitrijs2005/jasmify/internal/database"
	"github.com/dmitrijs2005/jasmify/internal/keyprovider"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/dmitrijs2005/jasmify/internal/metrics"
	"github.com/dmitrijs2005/jasmify/internal/repositories/repomanager"
	"github.com/dmitrijs2005/jasmify/internal/services"
	"github.com/dmitrijs2005/jasmify/internal/ulidx"

	gs "github.com/dmitrijs2005/jasmify/internal/transport/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	vault      *services.Vault
	dispatcher *commands.Dispatcher
	auth       *auth.Authenticator
}

// NewApp makes sure a master key is available, opens (and on first use
// creates) the database and builds the services. Failures here are fatal.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	logger = logger.With("module", "app")

	keys := keyprovider.NewProvider(cfg.WorkDir)
	created, err := keys.EnsureKey()
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}
	if created {
		logger.Info(ctx, "created master key", "path", keys.KeyFilePath())
	}

	db, err := database.Setup(ctx, cfg.WorkDir, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	vault := services.NewVault(db, repomanager.NewSQLiteRepositoryManager(), keys, ulidx.NewMinter(), logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		vault:      vault,
		dispatcher: commands.NewDispatcher(vault, logger),
		auth:       auth.NewAuthenticator(keys, cfg.TokenTTL),
	}, nil
}

// Dispatcher exposes the command surface for in-process hosts.
func (app *App) Dispatcher() *commands.Dispatcher {
	return app.dispatcher
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.ListenAddr, app.logger, app.dispatcher, app.auth, app.config.CommandTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// server fails, then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "work_dir", app.config.WorkDir, "commands", app.dispatcher.Names())
	app.initSignalHandler(ctx, cancelFunc)

	if n, err := app.vault.CountAccounts(ctx); err == nil {
		metrics.AccountsTotal.Set(float64(n))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(f func(context.Context, context.CancelFunc) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx, cancelFunc); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	run(app.startGRPCServer)
	if app.config.MetricsAddr != "" {
		run(app.startMetricsServer)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(errs...)
}
