package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	hastic "github.com/songjiao/hastic-grafana-app"
)

// statusCmd follows the processing status of an analytic unit.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Follow the processing status of an analytic unit",
	Long: `Poll the processing status of an analytic unit until it reaches a
terminal state (READY, FAILED, or 404) or the command is interrupted.

The poll interval is taken from status_poll_interval in the config file,
or --interval when given.

Example:
  hasticctl status -c config.yaml --id 2f1a830e
  hasticctl status --url http://localhost:8000 --id 2f1a830e --interval 500ms`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("id", "", "analytic unit id (required)")
	statusCmd.Flags().Duration("interval", 0, "poll interval (overrides config)")
	_ = statusCmd.MarkFlagRequired("id")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cmd, cfg)
	if err != nil {
		return err
	}

	unitID, _ := cmd.Flags().GetString("id")
	interval := cfg.StatusPollInterval.Duration()
	if flagInterval, _ := cmd.Flags().GetDuration("interval"); flagInterval > 0 {
		interval = flagInterval
	}

	seq, err := svc.PollStatus(unitID, interval)
	if err != nil {
		return err
	}
	defer seq.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		status, err := seq.Next(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, hastic.ErrSequenceStopped) {
			return nil
		}
		if err != nil {
			return err
		}

		if status.ErrorMessage != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status.Status, status.ErrorMessage)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), status.Status)
		}

		switch status.Status {
		case "READY", "FAILED", hastic.StatusNotFound:
			return nil
		}
	}
}
