package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"docgen/internal/config"
	"docgen/internal/core"
	"docgen/internal/docx"
	"docgen/internal/logging"
	"docgen/internal/schema"
	"docgen/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"template", cfg.Template.Path,
		"max_file_size", cfg.Upload.MaxFileSize,
		"bind_concurrency", cfg.Pipeline.BindConcurrency,
	)

	// Load the document template once; it is shared read-only across
	// requests. A missing or broken template fails startup.
	tpl, err := docx.Load(cfg.Template.Path)
	if err != nil {
		slog.Error("failed to load document template", "path", cfg.Template.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("template loaded", "placeholders", len(tpl.Placeholders()))

	// Create the pipeline service; this also verifies every template
	// placeholder resolves against the schema.
	service, err := core.NewService(tpl, schema.BillOfEntry,
		core.Limits{
			MaxFileSize: cfg.Upload.MaxFileSize,
			MaxRows:     cfg.Upload.MaxRows,
		},
		cfg.Pipeline.BindConcurrency,
	)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
