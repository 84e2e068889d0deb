package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	envPath, envErr := shared.LoadEnv()

	config := shared.DefaultConfig()
	var configErr error
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			configErr = err
		}
	}
	config.ApplyEnv()

	logger := shared.NewConfiguredLogger(config.Log)
	if envErr != nil {
		logger.Warn("failed to load .env file", "error", envErr)
	} else if envPath != "" {
		logger.Debug("loaded environment", "path", envPath)
	}
	if configErr != nil {
		logger.Warn("failed to load config, using defaults", "path", defaultConfigPath, "error", configErr)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "ytassist",
		Usage:    "Turn a free-text prompt into a YouTube playlist with Gemini",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()
	runner.Close()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}
