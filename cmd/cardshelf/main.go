package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cardshelf",
	Short: "Cardshelf - curated catalog of educational resource cards",
	Long: `Cardshelf serves a catalog of curated educational resource cards.

Run without arguments to start the HTTP server. Configuration comes from
CARDS_* environment variables and an optional .env file.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ cardshelf: %v\n", err)
		os.Exit(1)
	}
}
