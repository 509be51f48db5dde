package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/internal/repo"
	"github.com/inkwell/inkwell/internal/storage"
	"github.com/inkwell/inkwell/internal/sweeper"
)

func main() {

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogFormat)

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	slog.Info("connected to the database", "host", cfg.DBHost, "db", cfg.DBName)

	// Apply schema migrations
	if err := db.Run(cfg.DatabaseURL()); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Image storage: local disk or a MinIO/S3 bucket
	files, err := newFileStore(cfg)
	if err != nil {
		slog.Error("failed to set up file storage", "err", err)
		os.Exit(1)
	}

	// Background orphan-image sweep
	if cfg.SweepCron != "" {
		s := &sweeper.Sweeper{
			Posts:  repo.NewPostRepo(database),
			Files:  files,
			MinAge: cfg.SweepMinAge(),
		}
		c, err := sweeper.Run(s, cfg.SweepCron)
		if err != nil {
			slog.Error("failed to start image sweeper", "cron", cfg.SweepCron, "err", err)
			os.Exit(1)
		}
		defer c.Stop()
	}

	// Routes
	r := newRouter(database, files, cfg)

	// Start server LAST
	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting HTTPS server", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting HTTP server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newFileStore(cfg config.Config) (storage.FileStore, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir)
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
