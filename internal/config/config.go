package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv          = "FREEGAMEHUB_CONFIG"
	portEnv                = "PORT"
	logLevelEnv            = "LOG_LEVEL"
	telegramTokenEnv       = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv      = "TELEGRAM_CHAT_ID"
	appURLEnv              = "APP_URL"
	updateIntervalHoursEnv = "UPDATE_INTERVAL_HOURS"
	cacheFileEnv           = "CACHE_FILE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Logging     LoggingConfig  `yaml:"logging"`
	Telegram    TelegramConfig `yaml:"telegram"`
	App         AppConfig      `yaml:"app"`
	Cache       CacheConfig    `yaml:"cache"`
	Sources     SourcesConfig  `yaml:"sources"`
	VIPKeywords []string       `yaml:"vipKeywords"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelegramConfig wires all data required to send alerts.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present; without them the
// notifier silently no-ops.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// AppConfig carries settings referenced inside outbound messages.
type AppConfig struct {
	PublicURL           string `yaml:"publicUrl"`
	UpdateIntervalHours int    `yaml:"updateIntervalHours"`
}

// CacheConfig locates the durable snapshot file.
type CacheConfig struct {
	FilePath string `yaml:"filePath"`
}

// SourcesConfig holds the upstream endpoints; overridable for tests and
// self-hosted mirrors.
type SourcesConfig struct {
	GamerPowerURL string `yaml:"gamerPowerUrl"`
	EpicURL       string `yaml:"epicUrl"`
	RedditURL     string `yaml:"redditUrl"`
}

// Load reads .env, then YAML configuration (if present), then applies
// environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using system env vars")
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}

	if v := os.Getenv(appURLEnv); v != "" {
		c.App.PublicURL = v
	}

	if v := os.Getenv(updateIntervalHoursEnv); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.App.UpdateIntervalHours = hours
		}
	}

	if v := os.Getenv(cacheFileEnv); v != "" {
		c.Cache.FilePath = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != 0 {
		base.Server = override.Server
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if override.App.PublicURL != "" {
		base.App.PublicURL = override.App.PublicURL
	}
	if override.App.UpdateIntervalHours > 0 {
		base.App.UpdateIntervalHours = override.App.UpdateIntervalHours
	}

	if override.Cache.FilePath != "" {
		base.Cache = override.Cache
	}

	if override.Sources.GamerPowerURL != "" {
		base.Sources.GamerPowerURL = override.Sources.GamerPowerURL
	}
	if override.Sources.EpicURL != "" {
		base.Sources.EpicURL = override.Sources.EpicURL
	}
	if override.Sources.RedditURL != "" {
		base.Sources.RedditURL = override.Sources.RedditURL
	}

	if len(override.VIPKeywords) > 0 {
		base.VIPKeywords = override.VIPKeywords
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 3000},
		Logging: LoggingConfig{Level: "info"},
		App: AppConfig{
			PublicURL:           "https://freegamehub.onrender.com",
			UpdateIntervalHours: 4,
		},
		Cache: CacheConfig{FilePath: "games-cache.json"},
		Sources: SourcesConfig{
			GamerPowerURL: "https://www.gamerpower.com/api/giveaways",
			EpicURL:       "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions",
			RedditURL:     "https://www.reddit.com/r/googleplaydeals/new.json",
		},
		VIPKeywords: []string{
			"gta", "assassin", "cyberpunk", "elden", "fifa",
			"call of duty", "battlefield", "sims", "fallout",
			"skyrim", "witcher", "red dead", "god of war",
			"horizon", "spider-man", "final fantasy", "resident evil",
			"far cry", "doom", "wolfenstein", "metro", "borderlands",
		},
	}
}
