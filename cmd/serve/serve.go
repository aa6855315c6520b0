// Package serve implements the serve command: the HTTP trigger interface
// plus the optional periodic crawl tick.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/eventcrawl/cmd/common"
	"github.com/jonesrussell/eventcrawl/internal/api"
)

// shutdownTimeout bounds how long in-flight requests may run after SIGTERM.
const shutdownTimeout = 30 * time.Second

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger interface",
		Long:  `Serves the crawl, scan, and sync trigger endpoints. When a crawl schedule is configured, also crawls the next due venue on that cadence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps *common.Deps) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewCrawlHandler(deps.Crawler, deps.Config.Crawl.DefaultAreaID, deps.Logger.WithComponent("api"))
	router := api.NewRouter(handler, deps.Logger.WithComponent("http"))

	server := &http.Server{
		Addr:              ":" + deps.Config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ticker, err := startTicker(ctx, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("HTTP server listening", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		deps.Logger.Info("Shutting down")
	case serveErr := <-errCh:
		return fmt.Errorf("server failed: %w", serveErr)
	}

	if ticker != nil {
		tickerCtx := ticker.Stop()
		<-tickerCtx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("failed to shut down server: %w", shutdownErr)
	}

	return nil
}

// startTicker schedules the periodic crawl when a cron expression is
// configured. Returns nil when the ticker is disabled.
func startTicker(ctx context.Context, deps *common.Deps) (*cron.Cron, error) {
	spec := deps.Config.Crawl.Schedule
	if spec == "" {
		return nil, nil
	}

	ticker := cron.New()
	_, err := ticker.AddFunc(spec, func() {
		summary, crawlErr := deps.Crawler.CrawlNextVenue(ctx)
		if crawlErr != nil {
			deps.Logger.Error("Scheduled crawl failed", "error", crawlErr)
			return
		}
		deps.Logger.Info("Scheduled crawl finished", "message", summary.Message)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid crawl schedule %q: %w", spec, err)
	}

	ticker.Start()
	deps.Logger.Info("Crawl ticker started", "schedule", spec)
	return ticker, nil
}
