package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds page sizes for list endpoints.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPageSize == 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize == 0 {
		c.MaxPageSize = 100
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.DefaultPageSize != "" {
		if n, err := strconv.Atoi(os.Getenv(env.DefaultPageSize)); err == nil && n > 0 {
			c.DefaultPageSize = n
		}
	}
	if env.MaxPageSize != "" {
		if n, err := strconv.Atoi(os.Getenv(env.MaxPageSize)); err == nil && n > 0 {
			c.MaxPageSize = n
		}
	}
}

func (c *Config) validate() error {
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d",
			c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}
