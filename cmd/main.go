package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"fleetsync/internal/app"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// main is the entry point for the application
func main() {
	runApp()
}

// runApp contains the main application logic
func runApp() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	application := createApp(cfg, hasUIFlag(os.Args[1:]))
	application.Run()
}

// hasUIFlag checks if --ui flag is present in args
func hasUIFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--ui" {
			return true
		}
	}

	return false
}

// loadConfig wraps config.Load for easier testing
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// createApp creates the FX application with the given config; the live view owns the terminal so logs are discarded
func createApp(cfg *config.Config, ui bool) *fx.App {
	return fx.New(
		fx.WithLogger(createFxLogger(cfg)),
		fx.Supply(cfg),
		app.Module,
		fx.Decorate(func(log logger.Logger) logger.Logger {
			if !ui {
				return log
			}

			return logger.NewLoggerWithOutput(cfg, io.Discard)
		}),
	)
}

// createFxLogger returns an FX logger based on the config
func createFxLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.Logging.Level == logger.DebugLevel {
			return &fxevent.ConsoleLogger{W: os.Stderr}
		}

		return fxevent.NopLogger
	}
}
