package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file written by init
const FileName = "utilfn.json"

// FileNames lists the configuration files LoadConfig looks for, in order of preference
var FileNames = []string{FileName, "utilfn.yaml", "utilfn.yml"}

// Defaults applied to fields left empty in the configuration file
const (
	DefaultName          = "utility"
	DefaultPort          = 8000
	DefaultAdminPort     = 8001
	DefaultLogLevel      = "info"
	DefaultInvokeTimeout = "30s"
)

// ErrConfigNotFound is returned when no utilfn.json exists in the directory tree
var ErrConfigNotFound = errors.New("config file not found")

// Config represents the utilfn.json (or utilfn.yaml) configuration file
type Config struct {
	Name          string    `json:"name" yaml:"name"`
	Port          int       `json:"port" yaml:"port"`
	AdminPort     int       `json:"admin_port" yaml:"admin_port"`
	LogLevel      string    `json:"log_level" yaml:"log_level"`
	InvokeTimeout string    `json:"invoke_timeout" yaml:"invoke_timeout"`
	Dev           DevConfig `json:"dev" yaml:"dev"`
}

// DevConfig contains development mode configuration
type DevConfig struct {
	// Watch reloads the configuration file when it changes. Nil means enabled.
	Watch *bool `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// Default returns a configuration with every field set to its default
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads the config file from the current directory or a parent
// directory. It returns the directory the file was found in.
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific path. Files
// ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &config, nil
}

// Validate checks ports, log level, and invoke timeout
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.AdminPort < 1 || c.AdminPort > 65535 {
		return fmt.Errorf("admin_port %d out of range", c.AdminPort)
	}
	if c.Port == c.AdminPort {
		return fmt.Errorf("port and admin_port must differ (both %d)", c.Port)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Timeout returns the parsed invoke timeout
func (c *Config) Timeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.InvokeTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid invoke_timeout %q: %w", c.InvokeTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("invoke_timeout must be positive, got %s", timeout)
	}
	return timeout, nil
}

// WatchEnabled reports whether dev mode should watch the configuration file
func (c *Config) WatchEnabled() bool {
	return c.Dev.Watch == nil || *c.Dev.Watch
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AdminPort == 0 {
		c.AdminPort = DefaultAdminPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.InvokeTimeout == "" {
		c.InvokeTimeout = DefaultInvokeTimeout
	}
}

// FindFile returns the first of FileNames present in dir
func FindFile(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// loadConfigFromDir searches for a config file in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		if configPath, ok := FindFile(dir); ok {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrConfigNotFound, FileName, startDir)
}
