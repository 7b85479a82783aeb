package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:           "8473",
		DBPassword:     "password",
		DBSSLMode:      "disable",
		Env:            "development",
		SessionTTL:     24 * time.Hour,
		SweepInterval:  time.Hour,
		PlaceRetention: 24 * time.Hour,
		ResetTokenTTL:  time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid development config", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive durations", func(t *testing.T) {
		t.Parallel()
		for _, mutate := range []func(*Config){
			func(c *Config) { c.SessionTTL = 0 },
			func(c *Config) { c.SweepInterval = 0 },
			func(c *Config) { c.PlaceRetention = -time.Hour },
			func(c *Config) { c.ResetTokenTTL = 0 },
		} {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		}
	})

	t.Run("production requires strong db password", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Env = "production"
		assert.Error(t, cfg.Validate())

		cfg.DBPassword = "s3cure-enough-for-tests"
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_TracingConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.TracingEnabled = true
	cfg.TracingExporter = "otlp"
	cfg.OTLPEndpoint = "collector:4318"
	cfg.SamplerRatio = 0.25

	tc := cfg.TracingConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, "otlp", tc.Exporter)
	assert.Equal(t, "collector:4318", tc.OTLPEndpoint)
	assert.Equal(t, 0.25, tc.SamplerRatio)
	assert.Equal(t, "development", tc.Environment)
}
