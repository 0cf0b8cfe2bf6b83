package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:token"
	cfg.Support.GroupID = -100500
	cfg.Support.AdminIDs = []int64{200, 201}
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 30*time.Minute, cfg.Support.DialogTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Support.CleanupInterval)
}

func TestNormalizeDedupesAdmins(t *testing.T) {
	cfg := validConfig()
	cfg.Support.AdminIDs = []int64{200, 200, 201}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []int64{200, 201}, cfg.Support.AdminIDs)
}

func TestNormalizeRejectsMissingSupportSection(t *testing.T) {
	cfg := validConfig()
	cfg.Support.GroupID = 0
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Support.AdminIDs = nil
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Support.AdminIDs = []int64{-5}
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeJournalRequiresDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Support.Journal = true
	assert.Error(t, Normalize(cfg))

	cfg.Database.Host = "localhost"
	cfg.Database.Name = "supportbot"
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeRunModes(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = validConfig()
	cfg.Telegram.RunMode = "webhook"
	assert.Error(t, Normalize(cfg), "webhook mode without listener settings")

	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	assert.NoError(t, Normalize(cfg))
}

func TestIsAdmin(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.Support.IsAdmin(200))
	assert.False(t, cfg.Support.IsAdmin(999))
}
