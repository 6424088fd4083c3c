// Package config loads the command-line tool's settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prefix is prepended to every variable name, e.g. MESHCAPADE_API_KEY.
const Prefix = "MESHCAPADE"

// Config holds the settings shared by all CLI commands.
// Environment variables are automatically parsed from MESHCAPADE_ prefix.
type Config struct {
	APIKey string `envconfig:"API_KEY"`
	APIURL string `envconfig:"API_URL" default:"https://api.meshcapade.com/api/v1"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`

	// Download poll loop
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"60"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// New creates a Config by parsing environment variables.
// Example: MESHCAPADE_API_KEY, MESHCAPADE_POLL_INTERVAL=2s
//
// The API key is not checked here because a command-line flag may still
// supply it; call Validate once flags have been applied.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("api_key_present", cfg.APIKey != "").
		Dur("http_timeout", cfg.HTTPTimeout).
		Dur("poll_interval", cfg.PollInterval).
		Int("max_attempts", cfg.MaxAttempts).
		Str("log_level", cfg.LogLevel).
		Bool("debug", cfg.Debug).
		Msg("Configuration loaded")

	return &cfg, nil
}

// Validate checks the final settings.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required.Error("is required (set MESHCAPADE_API_KEY or --api-key)")),
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.PollInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxAttempts, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled")),
	)
}

// Level returns the configured zerolog level, falling back to info on
// unknown names. Debug forces debug level.
func (c *Config) Level() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
