package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv() {
	os.Unsetenv("APP_NAME")
	os.Unsetenv("HTTP_PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("PAIRING_CODE_TTL")
	os.Unsetenv("HTTP_TLS_ENABLED")
}

func TestNewConfig_Defaults(t *testing.T) { //nolint:paralleltest // cannot have simultaneous tests modifying environment variables
	clearEnv() // Clear environment variables to ensure defaults are tested

	cfg, err := NewConfig()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Verify default values
	assert.Equal(t, "signage-gateway", cfg.Name)
	assert.Equal(t, "DEVELOPMENT", cfg.Version)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "8181", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"*"}, cfg.AllowedHeaders)
	assert.Equal(t, false, cfg.TLS.Enabled)

	assert.Equal(t, "info", cfg.Level)

	assert.Equal(t, "signage", cfg.KeyPrefix)
	assert.Equal(t, 6, cfg.Pairing.CodeLength)
	assert.Equal(t, 10*time.Minute, cfg.Pairing.CodeTTL)
	assert.Equal(t, 90*time.Second, cfg.Pairing.GracePeriod)
	assert.Equal(t, 30*time.Second, cfg.Connections.HeartbeatInterval)
	assert.Equal(t, 2, cfg.Connections.MissedThreshold)
}

func TestNewConfig_EnvVars(t *testing.T) { //nolint:paralleltest // cannot have simultaneous tests modifying environment variables
	// Set environment variables
	os.Setenv("APP_NAME", "testGateway")
	os.Setenv("HTTP_PORT", "9090")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("REDIS_ADDR", "localhost:6379")
	os.Setenv("PAIRING_CODE_TTL", "5m")
	os.Setenv("HTTP_TLS_ENABLED", "false")

	defer clearEnv() // Ensure environment variables are cleared after test

	cfg, err := NewConfig()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "testGateway", cfg.Name)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Pairing.CodeTTL)
	assert.Equal(t, false, cfg.TLS.Enabled)
}
