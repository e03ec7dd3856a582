// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/internal/report"
	"github.com/telekom/hoptrace/internal/traceroute"
	"github.com/telekom/hoptrace/pkg/config"
)

// newClient creates the discovery client of the trace command.
var newClient = func(r traceroute.Resolver, observers ...traceroute.Observer) traceroute.Client {
	return traceroute.NewClient(traceroute.WithResolver(r), traceroute.WithObservers(observers...))
}

type traceOptions struct {
	output string
	graph  string
}

// NewCmdTrace creates a new trace command
func NewCmdTrace() *cobra.Command {
	var opts traceOptions
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "trace HOST",
		Short: "Discover the path to a host",
		Long: "Discover the routers between this machine and HOST.\n" +
			"Every hop is printed as soon as it answers or times out. Requires raw socket privileges.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancelLog := logger.NewContextWithLogger(ctx)
			defer cancelLog()

			return runTrace(ctx, cmd.OutOrStdout(), args[0], &cfg, opts)
		},
	}

	cmd.Flags().Int("max-hops", defaults.Trace.MaxHops, "maximum number of hops to probe")
	cmd.Flags().Int("port", defaults.Trace.Port, "UDP destination port of the probes")
	cmd.Flags().Duration("timeout", defaults.Trace.Timeout, "time to wait for an ICMP answer per hop")
	cmd.Flags().String("nameserver", "", "nameserver (host[:port]) used for lookups instead of the system resolver")
	cmd.Flags().StringVarP(&opts.output, "output", "o", string(report.FormatText), fmt.Sprintf("output format, one of %v", report.Formats))
	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the route as a Graphviz DOT file to this path")

	bindFlags(cmd, map[string]string{
		"trace.maxHops":       "max-hops",
		"trace.port":          "port",
		"trace.timeout":       "timeout",
		"resolver.nameserver": "nameserver",
	})

	return cmd
}

// runTrace discovers the route to host and writes it to w in the requested format.
func runTrace(ctx context.Context, w io.Writer, host string, cfg *config.Config, opts traceOptions) error {
	format, err := report.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	if err = cfg.Trace.Validate(); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidTraceOptions, err)
	}
	if err = cfg.Resolver.Validate(ctx); err != nil {
		return err
	}
	resolver, err := cfg.Resolver.Build()
	if err != nil {
		return fmt.Errorf("failed to create resolver: %w", err)
	}

	var (
		printer   *report.ProgressPrinter
		observers []traceroute.Observer
	)
	if format == report.FormatText {
		address, rErr := traceroute.Resolve(ctx, resolver, host)
		if rErr != nil {
			return rErr
		}
		printer = report.NewProgressPrinter(w)
		printer.Start(address, cfg.Trace.MaxHops)
		observers = append(observers, printer)
	}

	route, err := newClient(resolver, observers...).Discover(ctx, host, cfg.Trace)
	if printer != nil {
		printer.Finish(host, err)
	}
	if err != nil {
		return err
	}

	if format != report.FormatText {
		if err = report.Encode(w, format, route); err != nil {
			return err
		}
	}
	if opts.graph != "" {
		return writeGraph(opts.graph, route)
	}
	return nil
}

// writeGraph persists the DOT rendering of the route.
func writeGraph(path string, route traceroute.Route) (err error) {
	f, err := os.Create(path) // #nosec G304 // path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err = report.WriteDOT(f, route); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

// bindFlags binds the flags of the command to the given viper keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		cobra.CheckErr(viper.BindPFlag(key, cmd.Flags().Lookup(flag)))
	}
}
