// Package sync implements the sync command: refresh the venue rotation.
package sync

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/eventcrawl/cmd/common"
)

// Command returns the sync command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize venues from live listings",
		Long:  `Discovers venues from each active city's listings, creates pages and schedules for new ones, and deactivates venues that no longer appear.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.Build()
			if err != nil {
				return err
			}
			defer deps.Close()

			summary, err := deps.Crawler.SyncVenues(cmd.Context())
			if err != nil {
				return fmt.Errorf("venue sync failed: %w", err)
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
