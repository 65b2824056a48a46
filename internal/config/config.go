package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Detection DetectionConfig `mapstructure:"detection"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig holds persistence configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SourcesConfig groups per-source fetch configuration. Credentials left
// empty disable the corresponding source without error.
type SourcesConfig struct {
	News    NewsSourceConfig    `mapstructure:"news"`
	Twitter TwitterSourceConfig `mapstructure:"twitter"`
	Reddit  RedditSourceConfig  `mapstructure:"reddit"`
	RSS     RSSSourceConfig     `mapstructure:"rss"`
}

// NewsSourceConfig holds NewsAPI configuration
type NewsSourceConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	APIKey     string        `mapstructure:"api_key"`
	PageSize   int           `mapstructure:"page_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TwitterSourceConfig holds Twitter API configuration
type TwitterSourceConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RedditSourceConfig holds Reddit OAuth API configuration
type RedditSourceConfig struct {
	AuthURL      string        `mapstructure:"auth_url"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	UserAgent    string        `mapstructure:"user_agent"`
	Limit        int           `mapstructure:"limit"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RSSSourceConfig holds blog/RSS feed configuration
type RSSSourceConfig struct {
	Feeds   []string      `mapstructure:"feeds"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScoringConfig holds sentiment/topic scoring service configuration
type ScoringConfig struct {
	ServiceURL  string        `mapstructure:"service_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// DetectionConfig holds the default anomaly detection parameters, used
// when no enabled alert config exists in the store.
type DetectionConfig struct {
	SpikeSigma  float64 `mapstructure:"spike_sigma"`
	WindowHours int     `mapstructure:"window_hours"`
	Bucket      string  `mapstructure:"bucket"`
}

// IngestionConfig holds the scheduled ingestion configuration
type IngestionConfig struct {
	Query    string        `mapstructure:"query"`
	Interval time.Duration `mapstructure:"interval"`
	Enabled  bool          `mapstructure:"enabled"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("BRAND_TRACKER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("database.path", "./data/tracker.db")

	v.SetDefault("sources.news.api_base_url", "https://newsapi.org/v2")
	v.SetDefault("sources.news.page_size", 50)
	v.SetDefault("sources.news.timeout", "15s")

	v.SetDefault("sources.twitter.api_base_url", "https://api.twitter.com")
	v.SetDefault("sources.twitter.max_results", 50)
	v.SetDefault("sources.twitter.timeout", "10s")

	v.SetDefault("sources.reddit.auth_url", "https://www.reddit.com/api/v1/access_token")
	v.SetDefault("sources.reddit.api_base_url", "https://oauth.reddit.com")
	v.SetDefault("sources.reddit.user_agent", "brand-tracker/0.1")
	v.SetDefault("sources.reddit.limit", 50)
	v.SetDefault("sources.reddit.timeout", "10s")

	v.SetDefault("sources.rss.timeout", "30s")

	v.SetDefault("scoring.timeout", "10s")
	v.SetDefault("scoring.concurrency", 4)

	v.SetDefault("detection.spike_sigma", 2.5)
	v.SetDefault("detection.window_hours", 24)
	v.SetDefault("detection.bucket", "hour")

	v.SetDefault("ingestion.interval", "30m")
	v.SetDefault("ingestion.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Sources.News.APIBaseURL == "" {
		return fmt.Errorf("sources.news.api_base_url is required")
	}
	if c.Sources.News.PageSize < 1 {
		return fmt.Errorf("sources.news.page_size must be at least 1")
	}
	if c.Sources.Twitter.APIBaseURL == "" {
		return fmt.Errorf("sources.twitter.api_base_url is required")
	}
	if c.Sources.Reddit.AuthURL == "" || c.Sources.Reddit.APIBaseURL == "" {
		return fmt.Errorf("sources.reddit.auth_url and sources.reddit.api_base_url are required")
	}

	if c.Detection.SpikeSigma <= 0 {
		return fmt.Errorf("detection.spike_sigma must be positive")
	}
	if c.Detection.WindowHours < 1 {
		return fmt.Errorf("detection.window_hours must be at least 1")
	}
	if c.Detection.Bucket != "hour" && c.Detection.Bucket != "day" {
		return fmt.Errorf("detection.bucket must be one of: hour, day")
	}

	if c.Ingestion.Enabled {
		if c.Ingestion.Query == "" {
			return fmt.Errorf("ingestion.query is required when scheduled ingestion is enabled")
		}
		if c.Ingestion.Interval < 1*time.Minute {
			return fmt.Errorf("ingestion.interval must be at least 1 minute")
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
