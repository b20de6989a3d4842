package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-wxoa/internal/app"
	"github.com/samvad-hq/samvad-wxoa/internal/cli"
	"github.com/samvad-hq/samvad-wxoa/internal/config"
	"github.com/samvad-hq/samvad-wxoa/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wxoa: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	root := cli.NewRootCommand(&cli.Env{Out: os.Stdout, Open: openRuntime})
	return root.ExecuteContext(ctx)
}

// openRuntime loads config lazily so that help and usage work without credentials.
func openRuntime(ctx context.Context) (*app.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("wxoa starting", "config", map[string]any{
		"app_env":      cfg.Env,
		"base_url":     cfg.BaseURL,
		"storage_type": cfg.StorageType,
		"static_token": cfg.AccessToken != "",
	})

	rt, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return nil, err
	}
	return rt, nil
}
