package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/shared-expenses/api"
	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/auth"
	expenseDatamodel "github.com/frahmantamala/shared-expenses/internal/core/datamodel/expense"
	"github.com/frahmantamala/shared-expenses/internal/debug"
	"github.com/frahmantamala/shared-expenses/internal/expense"
	expenseRepo "github.com/frahmantamala/shared-expenses/internal/expense/postgres"
	"github.com/frahmantamala/shared-expenses/internal/telegram"
	"github.com/frahmantamala/shared-expenses/internal/transport/rest"
	"github.com/frahmantamala/shared-expenses/internal/transport/swagger"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests and Telegram webhooks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return startHTTPServer(cfg)
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	Store    expense.Store
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer(cfg *internal.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, cfg.Server.Origins(), deps.Logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "storage", cfg.Storage.Driver, "auth", cfg.Auth.Enabled)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
	}

	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	log := logger.LoggerWrapper()

	if _, err := swagger.Load(ctx, api.OpenAPI); err != nil {
		return nil, err
	}

	store, db, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	service := expense.NewService(store, log)
	botClient := telegram.NewBotClient(cfg.Telegram)
	relay := telegram.NewRelay(service, botClient, telegram.NewAuditLog(telegram.AuditCapacity), log)

	handlers := rest.Handlers{
		Expense:  expense.NewHandler(service),
		Telegram: telegram.NewHandler(relay, botClient, cfg.Telegram),
		Debug:    debug.NewHandler(service, cfg.Debug),
		Health:   rest.NewHealthHandler(map[string]rest.Pinger{"store": service}),
		Spec:     api.OpenAPI,
	}
	if cfg.Auth.Enabled {
		handlers.Auth = auth.NewHandler(newTokenVerifier(ctx, cfg.Auth, log))
	}

	return &Dependencies{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Logger:   log,
	}, nil
}

// newTokenVerifier returns nil when the key set cannot be loaded, which
// makes the gate answer 500 instead of letting requests through.
func newTokenVerifier(ctx context.Context, cfg internal.AuthConfig, log *slog.Logger) auth.TokenVerifier {
	verifier, err := auth.NewRemoteVerifier(ctx, cfg)
	if err != nil {
		log.Error("Auth enabled but key set unavailable", "error", err, "jwks_url", cfg.KeySetURL())
		return nil
	}
	return verifier
}

// openStore returns the expense store for the configured driver. The
// in-memory store has no database handle.
func openStore(cfg internal.StorageConfig) (expense.Store, *gorm.DB, error) {
	switch cfg.Driver {
	case "", internal.StorageMemory:
		return expense.NewMemoryStore(), nil, nil
	}

	db, err := initDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return expenseRepo.NewExpenseRepository(db), db, nil
}

// initDB opens the gorm connection. SQLite databases are migrated in place;
// PostgreSQL schemas are managed with the migrate command.
func initDB(cfg internal.StorageConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.StoragePostgres:
		dialector = postgres.Open(cfg.Source)
	case internal.StorageSQLite:
		dialector = sqlite.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == internal.StorageSQLite {
		if err := db.AutoMigrate(&expenseDatamodel.Expense{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	return db, nil
}
