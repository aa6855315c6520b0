// Package crawl implements the crawl command: process the next due venue.
package crawl

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/eventcrawl/cmd/common"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the next due venue",
		Long:  `Selects the active venue with the earliest overdue schedule, ingests its upcoming events, and reschedules it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			summary, err := deps.Crawler.CrawlNextVenue(cmd.Context())
			if err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
