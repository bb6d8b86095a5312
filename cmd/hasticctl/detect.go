package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	hastic "github.com/songjiao/hastic-grafana-app"
)

// detectCmd triggers a detection run for one or more analytic units.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Trigger detection for analytic units",
	Long: `Trigger a detection run for one or more analytic units, optionally
bounded to a time window given as epoch milliseconds.

Example:
  hasticctl detect -c config.yaml --id 2f1a830e
  hasticctl detect -c config.yaml --id a --id b --from 1700000000000 --to 1700003600000`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringSlice("id", nil, "analytic unit id, repeatable (required)")
	detectCmd.Flags().Int64("from", 0, "window start, epoch milliseconds")
	detectCmd.Flags().Int64("to", 0, "window end, epoch milliseconds")
	_ = detectCmd.MarkFlagRequired("id")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := newService(cmd, cfg)
	if err != nil {
		return err
	}

	ids, _ := cmd.Flags().GetStringSlice("id")

	var window *hastic.Window
	if cmd.Flags().Changed("from") && cmd.Flags().Changed("to") {
		from, _ := cmd.Flags().GetInt64("from")
		to, _ := cmd.Flags().GetInt64("to")
		window = &hastic.Window{From: from, To: to}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return svc.Detect(ctx, ids, window)
}
