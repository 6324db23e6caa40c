package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Jayden3422/voice-assistant/pkg/formatting"
	"github.com/Jayden3422/voice-assistant/pkg/middleware"
	"github.com/Jayden3422/voice-assistant/pkg/pagination"
)

const (
	EnvAPIBasePath     = "AUTOPILOT_API_BASE_PATH"
	EnvAPIMaxChunkSize = "AUTOPILOT_API_MAX_CHUNK_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AUTOPILOT_CORS_ENABLED",
	Origins:          "AUTOPILOT_CORS_ORIGINS",
	AllowedMethods:   "AUTOPILOT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AUTOPILOT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AUTOPILOT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AUTOPILOT_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AUTOPILOT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AUTOPILOT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig controls the API module surface.
type APIConfig struct {
	BasePath     string                `toml:"base_path"`
	MaxChunkSize string                `toml:"max_chunk_size"`
	CORS         middleware.CORSConfig `toml:"cors"`
	Pagination   pagination.Config     `toml:"pagination"`
}

// MaxChunkSizeBytes returns MaxChunkSize parsed into bytes.
func (c *APIConfig) MaxChunkSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxChunkSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxChunkSize != "" {
		c.MaxChunkSize = overlay.MaxChunkSize
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxChunkSize == "" {
		c.MaxChunkSize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxChunkSize); v != "" {
		c.MaxChunkSize = v
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %s", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxChunkSize); err != nil {
		return fmt.Errorf("invalid max_chunk_size: %w", err)
	}
	return nil
}
