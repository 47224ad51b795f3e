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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/eventpulse/internal/auth"
	"github.com/pscheid92/eventpulse/internal/config"
	"github.com/pscheid92/eventpulse/internal/database"
	"github.com/pscheid92/eventpulse/internal/logging"
	"github.com/pscheid92/eventpulse/internal/realtime"
	"github.com/pscheid92/eventpulse/internal/server"
	"github.com/pscheid92/eventpulse/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
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

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	pool := setupDB(cfg)
	defer pool.Close()

	// Repositories
	userRepo := database.NewUserRepo(pool)
	eventRepo := database.NewEventRepo(pool)

	// Auth service: bcrypt passwords, HS256 bearer tokens
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, clock)
	authSvc := auth.NewService(tokens, userRepo)

	// Real-time subsystem: registry -> engine -> bridge, plus the
	// per-connection session handler
	registry := realtime.NewRegistry(cfg.WSMaxConnections)
	engine := realtime.NewEngine(registry)
	bridge := realtime.NewBridge(engine, clock)
	rtHandler := realtime.NewHandler(authSvc, eventRepo, registry, engine, clock, cfg.WSIdleTimeout)

	srv := server.NewServer(cfg, userRepo, eventRepo, authSvc, bridge, rtHandler, pool)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
