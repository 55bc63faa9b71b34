// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

// Command api is the entry point for the Sowon HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the account engine and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sowondev/sowon/internal/account"
	"github.com/sowondev/sowon/internal/api"
	"github.com/sowondev/sowon/internal/platform/config"
	"github.com/sowondev/sowon/internal/platform/constants"
	"github.com/sowondev/sowon/internal/platform/kvstore"
	"github.com/sowondev/sowon/internal/platform/mail"
	"github.com/sowondev/sowon/internal/platform/migration"
	pgstore "github.com/sowondev/sowon/internal/platform/postgres"
	redisstore "github.com/sowondev/sowon/internal/platform/redis"
	"github.com/sowondev/sowon/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "sowon"))
	slog.SetDefault(log)

	log.Info("[Sowon] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "sowon"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Services ──────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// Credential codec: bcrypt by default, legacy for stored-data
	// compatibility with verifiers written by the original client.
	var codec sec.CredentialCodec = sec.NewBcryptCodec()
	if cfg.CredentialCodec == "legacy" {
		codec = sec.NewLegacyCodec(cfg.CredentialSalt)
		log.Warn("legacy_credential_codec_enabled")
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// Durable account collection lives in Postgres; the session snapshot
	// lives in Redis with no expiry (staleness is acceptable by contract).
	accountStore := kvstore.NewPostgresStore(pool)
	sessionStore := kvstore.NewRedisStore(rdb, "sowon:", 0)

	location, err := time.LoadLocation(cfg.ReferenceTimezone)
	must(log, err, "load reference timezone")

	var deliverer mail.SecretDeliverer
	if cfg.SendGridAPIKey != "" {
		deliverer = mail.NewSendGridDeliverer(cfg.SendGridAPIKey, cfg.MailFrom, log)
	} else {
		// The log-only fallback would print temporary secrets; refuse it
		// outside local development.
		if cfg.IsProduction() {
			must(log, errors.New("SENDGRID_API_KEY is required in production"), "configure mail delivery")
		}
		log.Warn("sendgrid_key_missing_using_log_deliverer")
		deliverer = mail.NewLogDeliverer(log)
	}

	accountRepository := account.NewStoreRepository(accountStore, log)
	sessionManager := account.NewSessionManager(sessionStore)
	historyLedger := account.NewHistoryLedger(location)
	accountService := account.NewService(accountRepository, codec, sessionManager, historyLedger, deliverer, jwtSvc, log)
	accountHandler := account.NewHandler(accountService, cfg.DailyConsultationQuota)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Account:   accountHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
