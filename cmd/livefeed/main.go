// Package main is the entry point for the livefeed CLI.
//
// Usage:
//
//	livefeed serve -c livefeed.yaml           # Start the feed server
//	livefeed validate -c livefeed.yaml        # Validate configuration
//	livefeed watch --email ada@example.com    # Follow the feed as a viewer
//	livefeed version                          # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd only displays help; functionality lives in subcommands.
var rootCmd = &cobra.Command{
	Use:   "livefeed",
	Short: "A real-time post feed",
	Long: `livefeed is a small real-time post feed.

Registered users publish short posts that are pushed to every connected
viewer over Server-Sent Events or WebSocket. Accounts and posts are kept
in memory and snapshotted to JSON files in the data directory.

Quick start:
  1. Run: livefeed serve
  2. Create an account: POST http://localhost:3200/api/accounts
  3. Follow the feed: livefeed watch --email you@example.com

Example config:
  port: 3200
  data_dir: ./data
  allowed_origins: [http://localhost:5173]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this livefeed binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "livefeed %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
