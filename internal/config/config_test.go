package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8700", cfg.Server.Port)
	assert.Equal(t, "dexbee-playground", cfg.Playground.ArenaPrefix)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SANDBOX_TIMEOUT", "250ms")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
}
