package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	hastic "github.com/songjiao/hastic-grafana-app"
	"github.com/songjiao/hastic-grafana-app/config"
)

// resolveConfig builds the effective configuration from the --config and
// --url flags. --url alone is enough; when both are given, --url wins.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	urlFlag, _ := cmd.Flags().GetString("url")

	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{
			Timeout:            config.Duration(10 * time.Second),
			StatusPollInterval: config.Duration(time.Second),
			SpanPollInterval:   config.Duration(3 * time.Second),
		}
	}
	if urlFlag != "" {
		cfg.URL = urlFlag
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("no server given: pass --url or a config file with a url")
	}
	return cfg, nil
}

// newService builds a hastic client from the resolved configuration, with
// alerts printed to stdout.
func newService(cmd *cobra.Command, cfg *config.Config) (*hastic.Service, error) {
	notifier := hastic.NotifierFunc(func(level hastic.Level, message string) {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", level, message)
	})

	return hastic.New(cfg.URL,
		hastic.WithLogger(newLogger()),
		hastic.WithNotifier(notifier),
		hastic.WithTimeout(cfg.Timeout.Duration()),
		hastic.WithHeaders(cfg.Headers),
	)
}
