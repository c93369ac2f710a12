package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/database"
	"github.com/gatehouse/gatehouse/internal/platform/config"
	"github.com/gatehouse/gatehouse/internal/platform/logging"
	"github.com/gatehouse/gatehouse/internal/platform/redact"
	"github.com/gatehouse/gatehouse/internal/registry"
	"github.com/gatehouse/gatehouse/internal/server"
	"github.com/gatehouse/gatehouse/internal/session"
	"github.com/gatehouse/gatehouse/internal/views"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupRegistry initializes the database client registry. A failed
// initialization is logged but not fatal: the service starts degraded and
// reports 503 on auth operations until a restart with valid configuration.
func setupRegistry(ctx context.Context, cfg *config.Config) *registry.Registry {
	reg := registry.New()
	if err := reg.Initialize(ctx, cfg.DBConfigFile); err != nil {
		slog.Error("Database registry initialization failed, starting degraded", "error", err)
		return reg
	}

	if client := reg.Client(ctx); client != nil {
		if err := database.Migrate(ctx, client.Pool); err != nil {
			slog.Error("Migrations failed", "error", err)
			os.Exit(1)
		}
	}

	return reg
}

// setupSessionStore picks Redis when configured, process memory otherwise.
func setupSessionStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (session.Store, func()) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, using in-memory session store")
		store := session.NewMemoryStore(clock, cfg.SessionMaxAge)
		stop := startSessionPruner(store)
		return store, stop
	}

	rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return session.NewRedisStore(rdb, cfg.SessionMaxAge), func() { _ = rdb.Close() }
}

func startSessionPruner(store *session.MemoryStore) func() {
	ticker := time.NewTicker(10 * time.Minute)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				store.Prune()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

func runGracefulShutdown(srv *server.Server, reg *registry.Registry) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		reg.Close()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()
	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"db_config_file", cfg.DBConfigFile,
		"redis_url", redact.URL(cfg.RedisURL),
		"session_secret", redact.Pair("SESSION_SECRET", cfg.SessionSecret),
		"session_max_age", cfg.SessionMaxAge,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	reg := setupRegistry(ctx, cfg)
	cancel()

	store, stopStore := setupSessionStore(context.Background(), cfg, clock)
	defer stopStore()

	sessions := session.NewManager(cfg.SessionSecret, store, int(cfg.SessionMaxAge.Seconds()), cfg.AppEnv == "production")
	authSvc := auth.NewService(database.NewUserRepo(reg), auth.NewHasher())

	loader, err := views.NewLoader()
	if err != nil {
		slog.Error("Failed to locate views", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, authSvc, sessions, reg, loader)
	done := runGracefulShutdown(srv, reg)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
