package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/msomdec/prof/internal/auth"
	"github.com/msomdec/prof/internal/handler"
	"github.com/msomdec/prof/internal/repository/fsstore"
	"github.com/msomdec/prof/internal/repository/sqlite"
	"github.com/msomdec/prof/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	port := envOrDefault("PORT", "3007")
	dataDir := envOrDefault("DATA_DIR", "data")
	tagDBPath := envOrDefault("TAG_DB_PATH", filepath.Join(dataDir, "tags.db"))

	authWindow := auth.DefaultWindow
	if v := os.Getenv("AUTH_WINDOW"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid AUTH_WINDOW", "error", err)
			os.Exit(1)
		}
		authWindow = parsed
	}

	store, err := fsstore.New(dataDir)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(tagDBPath)
	if err != nil {
		slog.Error("failed to open tag database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("tag database migrations applied")

	profileService := service.NewProfileService(
		store.Profiles(), store.Images(), db.Tags(),
		service.NewValidator(), service.NewImageNormalizer(),
	)

	// The tag index is a derived projection; rebuild it from the records at
	// startup to repair any drift from a prior crash.
	if err := profileService.RebuildTagIndex(context.Background()); err != nil {
		slog.Error("failed to rebuild tag index", "error", err)
		os.Exit(1)
	}
	slog.Info("tag index rebuilt")

	var verifier *auth.Verifier
	if os.Getenv("AUTH_DISABLED") == "true" {
		slog.Warn("signature verification disabled")
	} else {
		verifier = auth.NewVerifier(authWindow)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, profileService, verifier)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           cors.AllowAll().Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
