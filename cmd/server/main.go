package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"songmarket/internal/server/api"
	"songmarket/internal/server/auth"
	"songmarket/internal/server/config"
	"songmarket/internal/server/database"
	"songmarket/internal/server/notify"
	"songmarket/internal/server/service"
	"songmarket/internal/server/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"upload_dir", cfg.UploadDir,
		"allowed_origins", cfg.AllowedOrigins,
		"token_ttl", cfg.TokenTTL,
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Held for the lifetime of the process so seeding cannot run underneath us.
	releaseServeLock, err := db.AcquireServeLock(ctx)
	if err != nil {
		slog.Error("failed to acquire serve lock", "error", err)
		os.Exit(1)
	}
	defer releaseServeLock()

	// Initialize storage
	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to configure storage", "error", err)
		os.Exit(1)
	}
	if err := store.Init(ctx); err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Info("upload storage initialized", "backend", cfg.StorageBackend)

	// Initialize repositories and services
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	handler := api.NewHandler(
		service.NewAuthService(database.NewUserRepository(db), tokens),
		service.NewUploadService(store),
		service.NewResourceService[database.Song, database.SongFields](
			database.NewResourceRepository(db, database.SongKind), database.SongKind.Label),
		service.NewResourceService[database.Banner, database.BannerFields](
			database.NewResourceRepository(db, database.BannerKind), database.BannerKind.Label),
		db,
	)
	e := api.SetupRouter(handler, tokens, cfg.AllowedOrigins)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	if cfg.MailEnabled() {
		mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		mailer.SendAsync(ctx, notify.StartupNotice(cfg.MailFrom, cfg.MailTo))
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited cleanly")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.StorageS3 {
		return storage.NewMinioStore(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
	}
	return storage.NewFileSystemStore(cfg.UploadDir), nil
}
