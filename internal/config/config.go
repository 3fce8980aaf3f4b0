// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/internal/textgen"
	"github.com/briangreenhill/zepsite/internal/updater"
)

// Config holds all application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"3000"`
	StaticDir string `env:"STATIC_DIR" envDefault:"."`

	Store   StoreConfig
	Gemini  GeminiConfig
	Refresh RefreshConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// StoreConfig locates the content cache
type StoreConfig struct {
	DataFile     string `env:"DATA_FILE" envDefault:"/tmp/data.json"`
	SnapshotFile string `env:"SNAPSHOT_FILE" envDefault:"data.json"`
	BandKey      string `env:"BAND_KEY" envDefault:"led_zeppelin"`
}

// GeminiConfig holds text generation settings
type GeminiConfig struct {
	APIKey      string        `env:"GOOGLE_API_KEY"`
	Model       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature float32       `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	RetryMax    int           `env:"RETRY_MAX" envDefault:"3"`
	RetryBase   time.Duration `env:"RETRY_BASE" envDefault:"30s"`
	Emphasis    string        `env:"EMPHASIS_MODE" envDefault:"italic"`
}

// RefreshConfig controls when and how the cache is regenerated
type RefreshConfig struct {
	Interval     time.Duration `env:"REFRESH_INTERVAL" envDefault:"1h"`
	OnStart      bool          `env:"REFRESH_ON_START" envDefault:"true"`
	Blocking     bool          `env:"REFRESH_BLOCKING" envDefault:"true"`
	MaxAge       time.Duration `env:"REFRESH_MAX_AGE" envDefault:"24h"`
	ProfilesMode string        `env:"PROFILES_MODE" envDefault:"per-member"`
	MemberDelay  time.Duration `env:"MEMBER_DELAY" envDefault:"8s"`
	StepDelay    time.Duration `env:"STEP_DELAY" envDefault:"10s"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasGemini returns true if an API key is configured
func (c *Config) HasGemini() bool {
	return c.Gemini.APIKey != ""
}

// Validate rejects values that would only fail later
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Store.DataFile == "" {
		errs = append(errs, errors.New("DATA_FILE must not be empty"))
	}
	if c.Store.BandKey == "" {
		errs = append(errs, errors.New("BAND_KEY must not be empty"))
	}
	if _, err := textgen.ParseEmphasisMode(c.Gemini.Emphasis); err != nil {
		errs = append(errs, fmt.Errorf("EMPHASIS_MODE: %w", err))
	}
	if _, err := updater.ParseProfilesMode(c.Refresh.ProfilesMode); err != nil {
		errs = append(errs, fmt.Errorf("PROFILES_MODE: %w", err))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, fmt.Errorf("GEMINI_TEMPERATURE must be between 0-2, got %v", c.Gemini.Temperature))
	}
	if c.Gemini.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("RETRY_MAX must not be negative, got %d", c.Gemini.RetryMax))
	}
	for name, d := range map[string]time.Duration{
		"RETRY_BASE":       c.Gemini.RetryBase,
		"REFRESH_INTERVAL": c.Refresh.Interval,
		"REFRESH_MAX_AGE":  c.Refresh.MaxAge,
		"MEMBER_DELAY":     c.Refresh.MemberDelay,
		"STEP_DELAY":       c.Refresh.StepDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}
