package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, []string{"with commands", "!help for help"}, cfg.Statuses)
	assert.Equal(t, 5*time.Minute, cfg.StatusInterval)
	assert.Equal(t, 5.0, cfg.ReplyRate)
	assert.Equal(t, 5, cfg.ReplyAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Error(t, cfg.RequireToken())
}

func TestOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"DISCORD_TOKEN":           "secret",
		"DETACHE_PREFIX":          "?",
		"DETACHE_GUILD_PREFIXES":  "111:$,222:>>",
		"DETACHE_STATUSES":        "one|two|three",
		"DETACHE_STATUS_INTERVAL": "30s",
		"LOG_LEVEL":               "debug",
		"LOG_FILE":                "detache.log",
	})
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, map[string]string{"111": "$", "222": ">>"}, cfg.GuildPrefixes)
	assert.Equal(t, []string{"one", "two", "three"}, cfg.Statuses)
	assert.Equal(t, 30*time.Second, cfg.StatusInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "detache.log", cfg.Log.File)
}

func TestInvalidValues(t *testing.T) {
	_, err := FromMap(map[string]string{"DETACHE_STATUS_INTERVAL": "soon"})
	assert.Error(t, err)

	_, err = FromMap(map[string]string{"DETACHE_REPLY_RATE": "0", "DETACHE_REPLY_ATTEMPTS": "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DETACHE_REPLY_RATE")
	assert.Contains(t, err.Error(), "DETACHE_REPLY_ATTEMPTS")
}
