package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"ArticleGate/internal/config"
	"ArticleGate/internal/infrastructure/auth"
	"ArticleGate/internal/infrastructure/blob"
	"ArticleGate/internal/infrastructure/content"
	"ArticleGate/internal/infrastructure/metrics"
	"ArticleGate/internal/infrastructure/rest"
	"ArticleGate/internal/infrastructure/storage/memory"
	"ArticleGate/internal/infrastructure/storage/postgres"
	"ArticleGate/internal/logging"
	"ArticleGate/internal/ports"
	"ArticleGate/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	engine *usecase.Engine
	server *echo.Echo
}

// New connects storage and builds the HTTP server.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	store, health, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewJWT(AuthConfig(cfg))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}
	blobs, err := blob.NewURLResolver(cfg.Blob.BaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	recorder := metrics.NewRecorder()

	a.engine = usecase.NewEngine(usecase.EngineDeps{
		Store:   store,
		Blobs:   blobs,
		Content: content.NewPolicy(cfg.Content.ExcerptLength),
		Metrics: recorder,
		Logger:  baseLogger,
	})

	a.server = rest.NewServer(rest.Deps{
		Domains:  a.engine.Domains,
		Progress: a.engine.Progress,
		Ledger:   a.engine.Ledger,
		Catalog:  a.engine.Catalog,
		Auth:     verifier,
		Metrics:  recorder,
		Health:   health,
		Logger:   baseLogger,
	})
	a.server.Server.ReadTimeout = cfg.Server.ReadTimeout
	a.server.Server.WriteTimeout = cfg.Server.WriteTimeout

	return a, nil
}

func (a *Application) openStore(ctx context.Context) (ports.Store, func(context.Context) error, error) {
	switch a.cfg.Database.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory storage; data is lost on exit")
		return memory.New(), nil, nil
	default:
		pool, err := postgres.Connect(ctx, postgres.PoolOptions{
			DSN:      a.cfg.Database.DSN,
			MaxConns: a.cfg.Database.MaxConns,
		}, a.logger.With("component", "postgres"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		a.pool = pool
		store := postgres.NewStore(pool, a.logger.With("component", "store"))
		return store, store.Ping, nil
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting http server", "addr", a.cfg.Server.Addr)
		if err := a.server.Start(a.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("server exited")
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server
}

// Close releases the database pool.
func (a *Application) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

// AuthConfig maps the auth section onto the token verifier settings.
func AuthConfig(cfg config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	}
}
