package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/sessiongate/internal/api"
	"github.com/mcoot/sessiongate/internal/config"
	"github.com/mcoot/sessiongate/internal/factory"
)

func main() {
	// Load configuration from environment
	env, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := env.Level()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := factory.ConfigFromEnv(env, logger)
	if err != nil {
		logger.Error("failed to build application config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(cfg.SessionConfig.AdminPasswordHash) == 0 {
		logger.Warn("no admin password configured, admin login is disabled")
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// Create server
	server := api.NewServer(app.Router(), api.ServerConfig{
		Host:            env.Host,
		Port:            env.Port,
		ReadTimeout:     env.ReadTimeout,
		WriteTimeout:    env.WriteTimeout,
		ShutdownTimeout: env.ShutdownTimeout,
	}, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start the realtime worker
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		app.Worker.Run(ctx)
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", env.StorageType))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
		cancel()
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	<-workerDone
	if err := app.Close(); err != nil {
		logger.Error("failed to close storage", slog.String("error", err.Error()))
		exitCode = 1
	}
	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
