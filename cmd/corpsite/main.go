// Package main is the entry point for the corporate site server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
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

	"github.com/redis/go-redis/v9"

	"corpsite/internal/cache"
	"corpsite/internal/config"
	"corpsite/internal/content"
	"corpsite/internal/database"
	"corpsite/internal/handlers"
	"corpsite/internal/mail"
	"corpsite/internal/media"
	"corpsite/internal/middleware"
	"corpsite/internal/render"
	"corpsite/internal/router"
	"corpsite/internal/session"
	"corpsite/internal/storage"
	"corpsite/internal/store"
	"corpsite/web"
)

// siteName appears in page titles and the footer.
const siteName = "Corpsite"

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// PostgreSQL is opened on first use so the site starts without it.
	db := database.NewLazy(cfg.Database.URL)
	defer db.Close()

	if !cfg.DatabaseConfigured() {
		slog.Warn("database not configured, pages and submissions are unavailable")
	} else if cfg.IsDev() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if sqlDB, err := db.DB(ctx); err != nil {
			slog.Warn("database not reachable at startup", "error", err)
		} else if err := database.Seed(sqlDB); err != nil {
			slog.Warn("failed to seed database", "error", err)
		}
		cancel()
	}

	// Valkey backs the shared page cache and session revocation. Without it
	// both fall back to in-process state.
	var valkeyClient *redis.Client
	if cfg.Valkey.Host != "" {
		valkeyClient, err = cache.ConnectValkey(cfg.Valkey)
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
			valkeyClient = nil
		} else {
			defer valkeyClient.Close()
		}
	}

	// Connect to S3-compatible object storage (optional, uploads are
	// disabled without it).
	var blobs media.Blobs
	storageClient, err := storage.New(cfg.S3)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		blobs = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	mailer := mail.NewSMTPSender(cfg.Mail)
	if !mailer.Configured() {
		slog.Warn("smtp not configured, contact form is disabled")
	}

	renderer, err := render.New(siteName, cfg.IsDev(), content.Options{FallbackFields: cfg.RenderFallbackFields})
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessions := session.NewManager(cfg.Admin, secureCookies, valkeyClient)

	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	pageStore := store.NewPageStore(db)
	submissionStore := store.NewSubmissionStore(db)

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(pageStore, submissionStore, media.NewService(blobs), db, pageCache)
	authHandlers := handlers.NewAuth(sessions)
	publicHandlers := handlers.NewPublic(pageStore, submissionStore, mailer, renderer, pageCache)

	contactLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer contactLimiter.Stop()

	r := router.New(router.Options{
		CORSOrigins:    cfg.CORSOrigins,
		HSTS:           secureCookies,
		Static:         web.Static(),
		ContactLimiter: contactLimiter,
	}, sessions, adminHandlers, authHandlers, publicHandlers)

	// Uploads of up to 10 MB need a generous read timeout.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
