// Package server wires configuration, storage, services and transports into
// the recipe API process and runs it until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/recipekeeper/internal/server/identity"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/seed"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/recipekeeper/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	http   *httpserver.Server
	grpc   *gs.GRPCServer
}

// openDB is swapped in tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(c *config.Config) (*App, error) {

	level := slog.LevelInfo
	if c.Development {
		level = slog.LevelDebug
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	tokens, err := auth.NewTokenIssuer(auth.Options{
		SigningKey: c.JWTKey,
		Issuer:     c.JWTIssuer,
		Audience:   c.JWTAudience,
		Lifetime:   c.TokenValidityDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()

	store := identity.NewStore(db, repos, identity.NewArgon2idHasher(), identity.LockoutOptions{
		MaxFailedAccessAttempts: c.MaxFailedAccessAttempts,
		Duration:                c.LockoutDuration,
	}, logger)

	hs := httpserver.NewServer(
		httpserver.Options{
			Address:        c.EndpointAddrHTTP,
			AllowedOrigins: c.AllowedOrigins,
			Development:    c.Development,
		},
		httpserver.Services{
			Auth:    services.NewAuthService(store, store, tokens, c.LockoutOnFailure, logger),
			Recipes: services.NewRecipeService(db, repos, logger),
			Images:  services.NewImageService(c, logger),
		},
		tokens,
		logger,
	)

	grpcServer, err := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("grpc init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, repos: repos, http: hs, grpc: grpcServer}, nil
}

// prepareDB applies migrations and, when enabled, seeds an empty catalog.
func (app *App) prepareDB(ctx context.Context) error {
	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	if !app.config.SeedData {
		return nil
	}

	n, err := seed.NewSeeder(app.db, app.repos, app.logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		app.logger.Info(ctx, "sample recipes inserted", "count", n)
	}
	return nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}()

	if err := app.prepareDB(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
