package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// checkCmd probes the configured server and reports availability.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the Hastic server and report availability",
	Long: `Probe the configured Hastic server.

The probe issues a GET against the server root, verifies the response is
from a Hastic server, and checks the reported version against the
supported release line. The availability verdict is printed and reflected
in the exit code.

Example:
  hasticctl check --url http://localhost:8000
  hasticctl check -c config.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !svc.CheckAvailability(ctx) {
		return fmt.Errorf("hastic server at %s is not available", svc.URL())
	}

	info, err := svc.ServerInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "server version: %s (branch %s, commit %s)\n",
		info.PackageVersion, info.Git.Branch, info.Git.CommitHash)
	return nil
}
