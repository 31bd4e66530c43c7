package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/fxchat/infra/initializer"
	"github.com/amirasaad/fxchat/pkg/app"
	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(config.GetEnv("ENV_FILE", ".env"))
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and start the application
	a, err := app.New(ctx, deps, cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := a.Stop(); err != nil {
			logger.Error("Failed to release resources", "error", err)
		}
	}()
	a.Start(ctx)

	// Setup Fiber app with all routes and middleware
	fiberApp := webapi.SetupApp(a)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		_ = fiberApp.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
