// Package scan implements the scan command: ingest an area's upcoming events.
package scan

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/eventcrawl/cmd/common"
)

// Command returns the scan command.
func Command() *cobra.Command {
	var (
		areaID    int
		startDate string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan an area for upcoming events",
		Long:  `Lists upcoming events for an area and ingests each one. Does not touch the venue crawl rotation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			if areaID == 0 {
				areaID = deps.Config.Crawl.DefaultAreaID
			}

			summary, err := deps.Crawler.ScanArea(cmd.Context(), areaID, startDate)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&areaID, "area", 0, "source area id to scan (default from config)")
	cmd.Flags().StringVar(&startDate, "from", "", "start date (YYYY-MM-DD, default today)")
	return cmd
}
