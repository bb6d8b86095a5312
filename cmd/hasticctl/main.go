// Package main is the entry point for the hasticctl CLI.
//
// hasticctl is a small operator tool around the hastic client library:
// it probes server availability, follows analytic unit status, and
// triggers detections from the command line.
//
// Usage:
//
//	hasticctl check --url http://localhost:8000
//	hasticctl status -c config.yaml --id <unit>
//	hasticctl detect -c config.yaml --id <unit> --from 0 --to 9999999999999
//	hasticctl version
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "hasticctl",
	Short: "Command-line client for a Hastic anomaly-detection server",
	Long: `hasticctl talks to a Hastic anomaly-detection server.

It can probe server availability, follow the processing status of an
analytic unit, and trigger detection runs.

The target server is given either with --url or with a YAML config file:

  url: http://localhost:8000
  timeout: 5s
  status_poll_interval: 1s`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this hasticctl binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hasticctl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().String("url", "", "Hastic server URL (overrides config)")
}
