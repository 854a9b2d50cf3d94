// Package main is the entry point for the Driftline demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/demo"
	"github.com/driftline/driftline/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if config.WriteConfigRequested() {
		if path := config.ConfigPath(); path != "" {
			err = cfg.SaveTo(path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config write error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Driftline Demo ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := demo.New(cfg)
	if err != nil {
		logger.Error("failed to create demo", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("demo error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("demo closed normally")
}
