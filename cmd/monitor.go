// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg/agent"
	"github.com/telekom/hoptrace/pkg/config"
)

// NewCmdMonitor creates a new monitor command
func NewCmdMonitor() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Continuously discover the routes to the configured targets",
		Long: "Periodically discover the routes to all monitored targets and serve the\n" +
			"latest results, their OpenAPI schema and Prometheus metrics via HTTP.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runMonitor(ctx, &cfg)
		},
	}

	cmd.Flags().String("name", "", "name of this instance, exposed in the instance info metric")
	cmd.Flags().String("api-address", defaults.Api.ListeningAddress, "api: the address the server is listening on")
	cmd.Flags().StringSlice("targets", nil, "monitor: hosts whose routes are discovered")
	cmd.Flags().Duration("interval", defaults.Monitor.Interval, "monitor: time between two runs")
	cmd.Flags().String("loader-type", "", "loader: reload the monitor configuration from 'file' or 'http'")
	cmd.Flags().Duration("loader-interval", 0, "loader: time between two reloads, 0 loads once")
	cmd.Flags().String("loader-file-path", "", "loader: path of the monitor configuration file")
	cmd.Flags().String("loader-http-url", "", "loader: url of the monitor configuration")

	bindFlags(cmd, map[string]string{
		"name":             "name",
		"api.address":      "api-address",
		"monitor.targets":  "targets",
		"monitor.interval": "interval",
		"loader.type":      "loader-type",
		"loader.interval":  "loader-interval",
		"loader.file.path": "loader-file-path",
		"loader.http.url":  "loader-http-url",
	})

	return cmd
}

// runMonitor validates the configuration and runs the agent until ctx is done.
func runMonitor(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	if err := cfg.Validate(ctx); err != nil {
		return err
	}

	a, err := agent.New(cfg)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "Running hoptrace monitor", "targets", len(cfg.Monitor.Targets))
	err = a.Run(ctx)
	if errors.Is(err, agent.ErrFinalShutdown) && ctx.Err() != nil {
		log.InfoContext(ctx, "hoptrace monitor stopped")
		return nil
	}
	return err
}
