// Package config loads service configuration from a TOML base file, an
// environment overlay, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Jayden3422/voice-assistant/internal/backend"
	"github.com/Jayden3422/voice-assistant/pkg/database"
	"github.com/Jayden3422/voice-assistant/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAutopilotEnv             = "AUTOPILOT_ENV"
	EnvAutopilotShutdownTimeout = "AUTOPILOT_SHUTDOWN_TIMEOUT"
	EnvAutopilotVersion         = "AUTOPILOT_VERSION"
	EnvAutopilotLocale          = "AUTOPILOT_LOCALE"
)

var databaseEnv = &database.Env{
	Host:            "AUTOPILOT_DB_HOST",
	Port:            "AUTOPILOT_DB_PORT",
	Name:            "AUTOPILOT_DB_NAME",
	User:            "AUTOPILOT_DB_USER",
	Password:        "AUTOPILOT_DB_PASSWORD",
	SSLMode:         "AUTOPILOT_DB_SSL_MODE",
	MaxOpenConns:    "AUTOPILOT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AUTOPILOT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AUTOPILOT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "AUTOPILOT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "AUTOPILOT_STORAGE_CONTAINER_NAME",
	ConnectionString: "AUTOPILOT_STORAGE_CONNECTION_STRING",
}

var backendEnv = &backend.Env{
	BaseURL: "AUTOPILOT_BACKEND_BASE_URL",
	Timeout: "AUTOPILOT_BACKEND_TIMEOUT",
}

// Config is the root configuration for the voice assistant service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Backend         backend.Config  `toml:"backend"`
	API             APIConfig       `toml:"api"`
	Capture         CaptureConfig   `toml:"capture"`
	Locale          string          `toml:"locale"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the AUTOPILOT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAutopilotEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies the environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.Locale != "" {
		c.Locale = overlay.Locale
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Backend.Merge(&overlay.Backend)
	c.API.Merge(&overlay.API)
	c.Capture.Merge(&overlay.Capture)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Backend.Finalize(backendEnv); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Capture.Finalize(); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAutopilotLocale); v != "" {
		c.Locale = v
	}
	if v := os.Getenv(EnvAutopilotShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAutopilotVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAutopilotEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
