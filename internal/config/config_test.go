package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "scam_cache.json", cfg.Store.Path)

	assert.Equal(t, 3600, cfg.Cache.TTLSecs)
	assert.Equal(t, time.Hour, cfg.Cache.TTL())
	assert.Equal(t, 15, cfg.Cache.RetentionSize)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_SourceDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.Source.UserAgent, "Mozilla")

	assert.Equal(t, "https://news.google.com/rss/search", cfg.Source.News.BaseURL)
	assert.Len(t, cfg.Source.News.Queries, 4)
	assert.Contains(t, cfg.Source.News.Queries, "upi+scam+india")
	assert.Equal(t, 10, cfg.Source.News.MaxItems)

	assert.NotEmpty(t, cfg.Source.Complaints.URLs)
	assert.Equal(t, 1, cfg.Source.Complaints.DelaySecs)

	assert.NotEmpty(t, cfg.Source.Advisory.URLs)
	assert.Equal(t, 2, cfg.Source.Advisory.DelaySecs)

	assert.Len(t, cfg.Source.Social.Mirrors, 3)
	assert.Equal(t, "%23CyberScam", cfg.Source.Social.Query)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCAMINTEL_STORE_DRIVER", "sqlite")
	t.Setenv("SCAMINTEL_CACHE_TTL_SECS", "7200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 7200, cfg.Cache.TTLSecs)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL())
}

func TestInitLogger_RejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}

func TestInitLogger_ConsoleFormat(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
