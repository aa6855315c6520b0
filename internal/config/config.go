// Package config loads application configuration from config files and
// environment variables. Environment variables take precedence.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/eventcrawl/internal/database"
)

// Default configuration values
const (
	DefaultServerPort    = "8080"
	DefaultLogLevel      = "info"
	DefaultCrawlInterval = 7 * 24 * time.Hour
	DefaultAreaID        = 13
)

// SourceConfig configures the events graph API client.
type SourceConfig struct {
	BaseURL string `yaml:"base_url"`
	SiteURL string `yaml:"site_url"`
}

// SoundcloudConfig configures the audio platform client. Enrichment is
// disabled when the credentials are empty.
type SoundcloudConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// ServerConfig configures the HTTP trigger interface.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// CrawlConfig configures the crawl rotation.
type CrawlConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Schedule is a cron expression for the periodic crawl tick in serve
	// mode. Empty disables the ticker.
	Schedule string `yaml:"schedule"`
	// DefaultAreaID is the area scanned when a scan request names none.
	DefaultAreaID int `yaml:"default_area_id"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the application's full configuration.
type Config struct {
	Database        database.Config  `yaml:"database"`
	Source          SourceConfig     `yaml:"source"`
	Soundcloud      SoundcloudConfig `yaml:"soundcloud"`
	Server          ServerConfig     `yaml:"server"`
	Crawl           CrawlConfig      `yaml:"crawl"`
	Log             LogConfig        `yaml:"log"`
	SlackWebhookURL string           `yaml:"slack_webhook_url"`
}

// getConfigValue retrieves a configuration value from environment or Viper,
// with a default fallback. Environment variables take precedence.
func getConfigValue(envKey, viperKey, defaultValue string, v *viper.Viper) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if val := v.GetString(viperKey); val != "" {
		return val
	}
	return defaultValue
}

// Load reads configuration from .env, an optional config file, and the
// environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/eventcrawl")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return FromViper(v), nil
}

// FromViper builds the configuration from an already-populated Viper
// instance plus the environment.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Database: database.Config{
			Host:     getConfigValue("DB_HOST", "database.host", "localhost", v),
			Port:     getConfigValue("DB_PORT", "database.port", "5432", v),
			User:     getConfigValue("DB_USER", "database.user", "postgres", v),
			Password: getConfigValue("DB_PASSWORD", "database.password", "", v),
			DBName:   getConfigValue("DB_NAME", "database.dbname", "eventcrawl", v),
			SSLMode:  getConfigValue("DB_SSLMODE", "database.sslmode", "disable", v),
		},
		Source: SourceConfig{
			BaseURL: getConfigValue("SOURCE_BASE_URL", "source.base_url", "", v),
			SiteURL: getConfigValue("SOURCE_SITE_URL", "source.site_url", "", v),
		},
		Soundcloud: SoundcloudConfig{
			ClientID:     getConfigValue("SOUNDCLOUD_CLIENT_ID", "soundcloud.client_id", "", v),
			ClientSecret: getConfigValue("SOUNDCLOUD_CLIENT_SECRET", "soundcloud.client_secret", "", v),
		},
		Server: ServerConfig{
			Port: getConfigValue("SERVER_PORT", "server.port", DefaultServerPort, v),
		},
		Crawl: CrawlConfig{
			Interval:      DefaultCrawlInterval,
			Schedule:      getConfigValue("CRAWL_SCHEDULE", "crawl.schedule", "", v),
			DefaultAreaID: DefaultAreaID,
		},
		Log: LogConfig{
			Level:       getConfigValue("LOG_LEVEL", "log.level", DefaultLogLevel, v),
			Development: getConfigValue("LOG_DEVELOPMENT", "log.development", "false", v) == "true",
		},
		SlackWebhookURL: getConfigValue("SLACK_WEBHOOK_URL", "slack.webhook_url", "", v),
	}

	if interval := getConfigValue("CRAWL_INTERVAL", "crawl.interval", "", v); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			cfg.Crawl.Interval = parsed
		}
	}
	if areaID := v.GetInt("crawl.default_area_id"); areaID > 0 {
		cfg.Crawl.DefaultAreaID = areaID
	}

	return cfg
}
