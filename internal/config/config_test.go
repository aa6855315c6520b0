package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(viper.New())

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "eventcrawl", cfg.Database.DBName)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultCrawlInterval, cfg.Crawl.Interval)
	assert.Equal(t, DefaultAreaID, cfg.Crawl.DefaultAreaID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.SlackWebhookURL)
}

func TestFromViperFileValues(t *testing.T) {
	v := viper.New()
	v.Set("database.host", "db.internal")
	v.Set("source.base_url", "https://graph.example.com")
	v.Set("crawl.interval", "48h")
	v.Set("crawl.default_area_id", 34)
	v.Set("log.level", "debug")

	cfg := FromViper(v)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "https://graph.example.com", cfg.Source.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Crawl.Interval)
	assert.Equal(t, 34, cfg.Crawl.DefaultAreaID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesViper(t *testing.T) {
	t.Setenv("DB_HOST", "env-host")
	v := viper.New()
	v.Set("database.host", "file-host")

	cfg := FromViper(v)

	assert.Equal(t, "env-host", cfg.Database.Host)
}
