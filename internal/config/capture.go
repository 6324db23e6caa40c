package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Jayden3422/voice-assistant/pkg/formatting"
)

const (
	EnvCaptureDisabled        = "AUTOPILOT_CAPTURE_DISABLED"
	EnvCaptureEncoding        = "AUTOPILOT_CAPTURE_ENCODING"
	EnvCaptureMaxArtifactSize = "AUTOPILOT_CAPTURE_MAX_ARTIFACT_SIZE"
)

// CaptureConfig controls audio capture sessions. Disabling capture leaves the
// text analysis surface fully functional while start requests fail with a
// device-unavailable error.
type CaptureConfig struct {
	Disabled        bool   `toml:"disabled"`
	Encoding        string `toml:"encoding"`
	MaxArtifactSize string `toml:"max_artifact_size"`
}

// MaxArtifactSizeBytes returns MaxArtifactSize parsed into bytes.
func (c *CaptureConfig) MaxArtifactSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxArtifactSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CaptureConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. Disabled only applies when set, so an
// overlay cannot silently re-enable capture.
func (c *CaptureConfig) Merge(overlay *CaptureConfig) {
	if overlay.Disabled {
		c.Disabled = true
	}
	if overlay.Encoding != "" {
		c.Encoding = overlay.Encoding
	}
	if overlay.MaxArtifactSize != "" {
		c.MaxArtifactSize = overlay.MaxArtifactSize
	}
}

func (c *CaptureConfig) loadDefaults() {
	if c.Encoding == "" {
		c.Encoding = "audio/webm"
	}
	if c.MaxArtifactSize == "" {
		c.MaxArtifactSize = "10MB"
	}
}

func (c *CaptureConfig) loadEnv() {
	if v := os.Getenv(EnvCaptureDisabled); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil {
			c.Disabled = disabled
		}
	}
	if v := os.Getenv(EnvCaptureEncoding); v != "" {
		c.Encoding = v
	}
	if v := os.Getenv(EnvCaptureMaxArtifactSize); v != "" {
		c.MaxArtifactSize = v
	}
}

func (c *CaptureConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxArtifactSize); err != nil {
		return fmt.Errorf("invalid max_artifact_size: %w", err)
	}
	return nil
}
