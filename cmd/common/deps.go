// Package common wires the application's dependency graph for command
// implementations.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/eventcrawl/internal/config"
	"github.com/jonesrussell/eventcrawl/internal/crawler"
	"github.com/jonesrussell/eventcrawl/internal/database"
	"github.com/jonesrussell/eventcrawl/internal/logger"
	"github.com/jonesrussell/eventcrawl/internal/notify"
	"github.com/jonesrussell/eventcrawl/internal/persist"
	"github.com/jonesrussell/eventcrawl/internal/resolver"
	"github.com/jonesrussell/eventcrawl/internal/schedule"
	"github.com/jonesrussell/eventcrawl/internal/soundcloud"
	"github.com/jonesrussell/eventcrawl/internal/source"
)

// Deps holds the application's wired dependencies.
type Deps struct {
	Config  *config.Config
	Logger  logger.Interface
	DB      *sqlx.DB
	Crawler *crawler.Crawler
}

// Build loads configuration and wires the full dependency graph.
func Build() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var sourceOpts []source.Option
	if cfg.Source.BaseURL != "" {
		sourceOpts = append(sourceOpts, source.WithBaseURL(cfg.Source.BaseURL))
	}
	if cfg.Source.SiteURL != "" {
		sourceOpts = append(sourceOpts, source.WithSiteURL(cfg.Source.SiteURL))
	}
	sourceClient := source.NewClient(log.WithComponent("source"), sourceOpts...)

	audio := soundcloud.NewClient(soundcloud.Config{
		ClientID:     cfg.Soundcloud.ClientID,
		ClientSecret: cfg.Soundcloud.ClientSecret,
	}, log.WithComponent("soundcloud"))

	pages := database.NewPageRepository(db)
	events := database.NewEventRepository(db)
	mixes := database.NewMixRepository(db)
	cities := database.NewCityRepository(db)
	statuses := database.NewCrawlStatusRepository(db)

	engine := persist.New(pages, events, mixes, log.WithComponent("persist"))
	scheduler := schedule.New(statuses, cfg.Crawl.Interval, log.WithComponent("schedule"))
	sink := notify.FromWebhookURL(cfg.SlackWebhookURL, log.WithComponent("notify"))

	resolverLog := log.WithComponent("resolver")
	crawl := crawler.New(crawler.Params{
		Source: sourceClient,
		NewResolver: func() crawler.EntityResolver {
			return resolver.New(sourceClient, audio, cities, resolverLog)
		},
		Persister: engine,
		Schedule:  scheduler,
		Pages:     pages,
		Cities:    cities,
		Sink:      sink,
		Logger:    log.WithComponent("crawler"),
	})

	return &Deps{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Crawler: crawl,
	}, nil
}

// Close releases held resources.
func (d *Deps) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("Failed to close database", "error", err)
		}
	}
}
