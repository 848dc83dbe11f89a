// Package config provides configuration for the AFM agent. Values come from
// an optional YAML file with environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort     = 8747
	DefaultLogLevel = "info"
	DefaultDataDir  = ".afm"

	// Environment variable names
	EnvPort       = "AFM_PORT"
	EnvLogLevel   = "AFM_LOG_LEVEL"
	EnvDataDir    = "AFM_DATA_DIR"
	EnvInboxDir   = "AFM_INBOX_DIR"
	EnvHeadless   = "AFM_HEADLESS"
	EnvConfigFile = "AFM_CONFIG"

	// Database filename
	DBFilename = "afm.db"

	// Config filename inside the data directory
	ConfigFilename = "config.yaml"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	InboxDir() string
	ExportDir() string
	Headless() bool
}

// EnvConfig resolves configuration as defaults, then the YAML file, then
// environment variables.
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	inboxDir string
	headless bool
}

// fileConfig is the YAML config file shape. All fields are optional.
type fileConfig struct {
	Port     *int    `yaml:"port"`
	LogLevel *string `yaml:"log_level"`
	DataDir  *string `yaml:"data_dir"`
	InboxDir *string `yaml:"inbox_dir"`
	Headless *bool   `yaml:"headless"`
}

// New builds the effective configuration. A missing config file is fine; a
// malformed one is an error so a typo cannot silently revert to defaults.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
	}

	if err := cfg.applyFile(configFilePath()); err != nil {
		return nil, err
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.port = port
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	if id := os.Getenv(EnvInboxDir); id != "" {
		cfg.inboxDir = id
	}
	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	return cfg, nil
}

func (c *EnvConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Port != nil {
		c.port = *fc.Port
	}
	if fc.LogLevel != nil {
		c.logLevel = *fc.LogLevel
	}
	if fc.DataDir != nil {
		c.dataDir = *fc.DataDir
	}
	if fc.InboxDir != nil {
		c.inboxDir = *fc.InboxDir
	}
	if fc.Headless != nil {
		c.headless = *fc.Headless
	}
	return nil
}

func configFilePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return filepath.Join(defaultDataDir(), ConfigFilename)
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// InboxDir returns the watched pack drop directory
func (c *EnvConfig) InboxDir() string {
	if c.inboxDir != "" {
		return c.inboxDir
	}
	return filepath.Join(c.dataDir, "inbox")
}

// ExportDir returns the default destination for exported bundles
func (c *EnvConfig) ExportDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// Headless reports whether the tray UI is disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
