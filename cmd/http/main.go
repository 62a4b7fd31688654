package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/Chetan2520/RathWale-Backend/internal/auth"
	"github.com/Chetan2520/RathWale-Backend/internal/config"
	"github.com/Chetan2520/RathWale-Backend/internal/handler"
	"github.com/Chetan2520/RathWale-Backend/internal/invoice"
	"github.com/Chetan2520/RathWale-Backend/internal/logging"
	"github.com/Chetan2520/RathWale-Backend/internal/migrations"
	"github.com/Chetan2520/RathWale-Backend/internal/repository"
	"github.com/Chetan2520/RathWale-Backend/internal/repository/sqlite"
	"github.com/Chetan2520/RathWale-Backend/internal/service"
)

const shutdownTimeout = 5 * time.Second

// stores is whichever persistence backend DATABASE_URL selected.
type stores struct {
	entries service.EntryRepository
	users   service.UserRepository
	close   func()
}

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.close()

	// 3. Setup Logic
	hasher := auth.NewHasher(runtime.NumCPU(), cfg.Auth.BcryptCost)
	defer hasher.Close()
	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	guard := auth.NewMiddleware(tokens, db.users, logger)

	renderer, err := invoice.NewPDFRenderer(cfg.Invoice.FontDir)
	if err != nil {
		return err
	}
	builder := invoice.NewBuilder(invoice.Options{
		CompanyName:    cfg.Invoice.CompanyName,
		CompanyTagline: cfg.Invoice.CompanyTagline,
		ThankYou:       cfg.Invoice.ThankYou,
		Currency:       cfg.Invoice.Currency,
		DateLayout:     cfg.Invoice.DateLayout,
	})

	h := handler.NewHandler(handler.Deps{
		Entries:        service.NewEntryService(db.entries, logger),
		Auth:           service.NewAuthService(db.users, hasher, tokens, logger),
		RequireAuth:    guard.RequireAuth,
		Invoices:       builder,
		Renderer:       renderer,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})

	// 4. Setup Server
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Run Server with Graceful Shutdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exiting")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if path, ok := cfg.Database.SQLitePath(); ok {
		store, err := sqlite.NewStore(ctx, path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &stores{
			entries: store.Entries(),
			users:   store.Users(),
			close:   func() { store.Close() },
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB, migrations.Postgres)
	sqlDB.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to database", "migrations_applied", applied)

	return &stores{
		entries: repository.NewEntryRepository(pool),
		users:   repository.NewUserRepository(pool),
		close:   pool.Close,
	}, nil
}
