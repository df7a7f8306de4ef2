package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_APP_ID", "app")
	t.Setenv("DISCORD_GUILD_ID", "guild")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 20*time.Second, cfg.TickInterval)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_APP_ID", "app")
	t.Setenv("DISCORD_GUILD_ID", "guild")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_InvalidTickInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICK_INTERVAL")
}

func TestLoad_NegativeTickInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL", "-5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL", "5s")
	t.Setenv("PORT", "9090")
	t.Setenv("ALERT_ROLE_NAME", "Plantadores")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "Plantadores", cfg.AlertRoleName)
}
