// Package commands contains the CLI commands for the application
package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/okra-platform/utilfn/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	// LogLevel overrides the configured log level when set
	LogLevel string

	// ConfigPath points at a utilfn.json; empty means discover it
	ConfigPath string
}

type Controller struct {
	Flags *Flags
}

// loadConfig returns the configuration and the path it was read from. Without
// an explicit path a missing utilfn.json falls back to defaults and an empty path.
func (c *Controller) loadConfig() (*config.Config, string, error) {
	if c.Flags != nil && c.Flags.ConfigPath != "" {
		cfg, err := config.LoadConfigFromPath(c.Flags.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, c.Flags.ConfigPath, nil
	}

	cfg, dir, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.Default(), "", nil
		}
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	path, ok := config.FindFile(dir)
	if !ok {
		path = filepath.Join(dir, config.FileName)
	}
	return cfg, path, nil
}

// applyLogLevel sets the global log level from the config unless --log-level was given
func (c *Controller) applyLogLevel(cfg *config.Config) {
	if c.Flags != nil && c.Flags.LogLevel != "" {
		return
	}
	zerolog.SetGlobalLevel(cfg.Level())
}

// logger returns the process logger with a command field
func (c *Controller) logger(command string) zerolog.Logger {
	return log.Logger.With().Str("command", command).Logger()
}
