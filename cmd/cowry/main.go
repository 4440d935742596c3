// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/lonecowry/cowry-cms/internal/config"
	"github.com/lonecowry/cowry-cms/internal/handler/api"
	"github.com/lonecowry/cowry-cms/internal/logging"
	"github.com/lonecowry/cowry-cms/internal/middleware"
	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/scheduler"
	"github.com/lonecowry/cowry-cms/internal/store"
	"github.com/lonecowry/cowry-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Cowry CMS - Lone Cowry site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_AUTH_SECRET        Session token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_DB_PATH            SQLite database path (default: ./data/cowry.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_UPLOADS_DIR        Uploaded media directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_ADMIN_EMAIL        Provision an admin account on startup (with COWRY_ADMIN_PASSWORD)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_DEMO_MODE          Seed demo blog content on startup (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COWRY_SCHEDULER_ENABLED  Publish scheduled posts in the background (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("cowry %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		user, err := store.EnsureUser(ctx, db, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("provisioning admin account: %w", err)
		}
		slog.Info("admin account ready", "id", user.ID, "email", user.Email)
	}

	if cfg.DemoMode {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	if cfg.SchedulerEnabled {
		sched := scheduler.New(db, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	apiHandler := api.NewHandler(db, cfg, loginProtection)
	healthHandler := api.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/health", healthHandler.Health)

	apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)
	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(middleware.OptionalSession(apiHandler.Tokens()))

		r.Route("/auth", func(r chi.Router) {
			r.With(loginProtection.Middleware()).Post("/login", apiHandler.Login)
			r.Get("/login", apiHandler.Session)
			r.Post("/logout", apiHandler.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", apiHandler.ListPosts)
			r.With(middleware.RequireSession()).Post("/", apiHandler.CreatePost)
			r.Get("/{id}", apiHandler.GetPost)
			r.With(middleware.RequireSession()).Put("/{id}", apiHandler.UpdatePost)
			r.With(middleware.RequireSession()).Delete("/{id}", apiHandler.DeletePost)
		})

		r.With(middleware.RequireSession()).Post("/uploads", apiHandler.Upload)
	})

	// Serve uploaded media. Files under admin/ are account scoped and
	// require a session.
	uploadsFS := http.Dir(cfg.UploadsDir)
	uploadsHandler := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(uploadsFS)))
	r.Route("/uploads", func(r chi.Router) {
		r.Use(middleware.OptionalSession(apiHandler.Tokens()))
		r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/uploads/admin/") && middleware.GetSession(req) == nil {
				http.NotFound(w, req)
				return
			}
			uploadsHandler.ServeHTTP(w, req)
		}))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
