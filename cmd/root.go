// Package cmd implements the command-line interface for eventcrawl.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/eventcrawl/cmd/crawl"
	"github.com/jonesrussell/eventcrawl/cmd/scan"
	"github.com/jonesrussell/eventcrawl/cmd/serve"
	cmdsync "github.com/jonesrussell/eventcrawl/cmd/sync"
)

var rootCmd = &cobra.Command{
	Use:   "eventcrawl",
	Short: "An events graph crawler",
	Long:  `Crawls an events graph API, resolves venues, artists, and promoters, and keeps them synchronized in Postgres.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so configuration sees the variables.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eventcrawl version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(scan.Command())
	rootCmd.AddCommand(cmdsync.Command())
	rootCmd.AddCommand(serve.Command())
}
