package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test. envconfig treats a
// variable set to "" as present, which would bypass defaults.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetEnv(t, "MESHCAPADE_API_KEY", "MESHCAPADE_API_URL", "MESHCAPADE_HTTP_TIMEOUT",
		"MESHCAPADE_POLL_INTERVAL", "MESHCAPADE_MAX_ATTEMPTS", "MESHCAPADE_LOG_LEVEL", "MESHCAPADE_DEBUG")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "https://api.meshcapade.com/api/v1", cfg.APIURL)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 60, cfg.MaxAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)

	err = cfg.Validate()
	require.Error(t, err, "missing API key must be rejected")
	assert.Contains(t, err.Error(), "MESHCAPADE_API_KEY")
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	t.Setenv("MESHCAPADE_API_KEY", "key-123")
	t.Setenv("MESHCAPADE_API_URL", "https://staging.example.com/api/v1")
	t.Setenv("MESHCAPADE_POLL_INTERVAL", "250ms")
	t.Setenv("MESHCAPADE_MAX_ATTEMPTS", "3")
	t.Setenv("MESHCAPADE_LOG_LEVEL", "WARN")

	cfg, err := New()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, "https://staging.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
}

func TestConfigLoad_BadDuration(t *testing.T) {
	t.Setenv("MESHCAPADE_POLL_INTERVAL", "soon")
	_, err := New()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{APIKey: "k", APIURL: "https://api.example.com", HTTPTimeout: time.Second, LogLevel: "info"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"bad url":          func(c *Config) { c.APIURL = "not a url" },
		"zero timeout":     func(c *Config) { c.HTTPTimeout = 0 },
		"negative poll":    func(c *Config) { c.PollInterval = -time.Second },
		"negative retries": func(c *Config) { c.MaxAttempts = -1 },
		"unknown level":    func(c *Config) { c.LogLevel = "chatty" },
	}
	for name, mutate := range cases {
		c := valid
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, (&Config{}).Level())
	assert.Equal(t, zerolog.ErrorLevel, (&Config{LogLevel: "error"}).Level())
	assert.Equal(t, zerolog.DebugLevel, (&Config{LogLevel: "error", Debug: true}).Level())
	assert.Equal(t, zerolog.InfoLevel, (&Config{LogLevel: "bogus"}).Level())
}
