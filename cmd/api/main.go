package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"computer-inventory-api/internal"
	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		log.Fatalf("Logger error: %v", err)
	}

	err = run(cfg)
	if err != nil {
		logger.Log.Errorw("computer inventory API stopped", "error", err)
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM. Every resource it opens is released
// before it returns.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, store.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("database connection failed (driver %s): %w", cfg.Database.Driver, err)
	}

	applied, err := db.Migrate(ctx)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrations failed: %w", err)
	}
	if len(applied) > 0 {
		logger.Log.Infow("migrations applied", "files", applied)
	}

	sessionOpts := auth.SessionOptions{
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		HTTPOnly: cfg.Session.HTTPOnly,
		Rolling:  cfg.Session.Rolling,
	}
	var sm *auth.SessionManager
	switch cfg.Session.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("redis connection failed (addr %s): %w", cfg.Redis.Addr, err)
		}
		sm = auth.NewRedisSessions(rdb, sessionOpts, cfg.SessionKeys()...)
	default:
		sm = auth.NewCookieSessions(sessionOpts, cfg.SessionKeys()...)
	}

	srv := internal.NewServer(cfg, db, sm)
	defer func() {
		if err := srv.Close(context.Background()); err != nil {
			logger.Log.Warnw("closing server resources", "error", err)
		}
	}()
	if srv.JWTManager != nil {
		if err := srv.JWTManager.ValidateConfig(); err != nil {
			return fmt.Errorf("JWT configuration validation failed: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Infow("starting computer inventory API",
			"env", cfg.Env,
			"addr", cfg.Addr,
			"db_driver", cfg.Database.Driver,
			"session_store", cfg.Session.Store,
			"bearer_tokens", srv.JWTManager != nil,
			"metrics", cfg.EnableMetrics,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Infow("shutting down", "timeout", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
