package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ".", cfg.StaticDir)
	assert.Equal(t, "/tmp/data.json", cfg.Store.DataFile)
	assert.Equal(t, "data.json", cfg.Store.SnapshotFile)
	assert.Equal(t, "led_zeppelin", cfg.Store.BandKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.InDelta(t, 0.7, cfg.Gemini.Temperature, 1e-6)
	assert.Equal(t, 3, cfg.Gemini.RetryMax)
	assert.Equal(t, 30*time.Second, cfg.Gemini.RetryBase)
	assert.Equal(t, time.Hour, cfg.Refresh.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Refresh.MaxAge)
	assert.Equal(t, 8*time.Second, cfg.Refresh.MemberDelay)
	assert.Equal(t, 10*time.Second, cfg.Refresh.StepDelay)
	assert.True(t, cfg.Refresh.OnStart)
	assert.True(t, cfg.Refresh.Blocking)
	assert.Equal(t, "per-member", cfg.Refresh.ProfilesMode)
	assert.False(t, cfg.HasGemini())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("PORT", "8080")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("PROFILES_MODE", "all")
	t.Setenv("EMPHASIS_MODE", "strip")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasGemini())
	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.Refresh.Interval)
	assert.Equal(t, "all", cfg.Refresh.ProfilesMode)
	assert.Equal(t, "strip", cfg.Gemini.Emphasis)
	assert.InDelta(t, 0.2, cfg.Gemini.Temperature, 1e-6)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unparseable duration", "MEMBER_DELAY", "soon"},
		{"negative duration", "STEP_DELAY", "-1s"},
		{"unknown profiles mode", "PROFILES_MODE", "sometimes"},
		{"unknown emphasis", "EMPHASIS_MODE", "bold"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"temperature out of range", "GEMINI_TEMPERATURE", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{LogFormat: "json"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DATA_FILE")
	assert.Contains(t, err.Error(), "BAND_KEY")
}
