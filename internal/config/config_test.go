package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTelegramEnabledDerivedFromCredentials(t *testing.T) {
	assert.False(t, TelegramConfig{}.Enabled())
	assert.False(t, TelegramConfig{BotToken: "tok"}.Enabled())
	assert.False(t, TelegramConfig{ChatID: "42"}.Enabled())
	assert.True(t, TelegramConfig{BotToken: "tok", ChatID: "42"}.Enabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("UPDATE_INTERVAL_HOURS", "6")
	t.Setenv("CACHE_FILE", "/tmp/cache.json")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, 6, cfg.App.UpdateIntervalHours)
	assert.Equal(t, "/tmp/cache.json", cfg.Cache.FilePath)
}

func TestEnvOverrideIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("UPDATE_INTERVAL_HOURS", "0")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.App.UpdateIntervalHours)
}

func TestMergeConfigPrefersOverrides(t *testing.T) {
	base := defaultConfig()
	merged := mergeConfig(base, Config{
		Server:      ServerConfig{Port: 9000},
		VIPKeywords: []string{"half-life"},
		Sources:     SourcesConfig{RedditURL: "https://example.com/feed.json"},
	})

	assert.Equal(t, 9000, merged.Server.Port)
	assert.Equal(t, []string{"half-life"}, merged.VIPKeywords)
	assert.Equal(t, "https://example.com/feed.json", merged.Sources.RedditURL)
	// Untouched fields keep their defaults.
	assert.Equal(t, base.Sources.GamerPowerURL, merged.Sources.GamerPowerURL)
}
