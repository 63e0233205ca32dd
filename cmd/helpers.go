package cmd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/config"
	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/logging"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `contenthub init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, string(cfg.Log.Format))
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "contenthub.db")
}
