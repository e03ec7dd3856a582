// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/internal/traceroute"
	"github.com/telekom/hoptrace/pkg/api"
	"github.com/telekom/hoptrace/pkg/config"
	"github.com/telekom/hoptrace/pkg/monitor"
	"github.com/telekom/hoptrace/pkg/telemetry"
)

const shutdownTimeout = time.Second * 90

// Agent runs the route monitor together with its API, telemetry and
// configuration loader
type Agent struct {
	// config is the startup configuration of the agent
	config *config.Config
	// api serves the monitor results
	api api.API
	// loader is used to reload the monitor configuration, nil if disabled
	loader config.Loader
	// telemetry provides the metrics registry and the tracer provider
	telemetry telemetry.Provider
	// monitor periodically discovers the routes to all targets
	monitor *monitor.Monitor
	// cMonitor is used to signal that the monitor configuration has changed
	cMonitor chan monitor.Config
	// cErr is used to handle non-recoverable errors of the agent components
	cErr chan error
	// cDone is used to signal that the agent was shut down
	cDone chan struct{}
	// stopped is closed when Run returns, late component results are dropped
	stopped chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// components is the number of goroutines reporting to cErr: loader, api and monitor.
const components = 3

// New creates a new agent from a validated configuration
func New(cfg *config.Config, opts ...monitor.Option) (*Agent, error) {
	resolver, err := cfg.Resolver.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	tcfg := cfg.Telemetry
	if !cfg.HasTelemetry() {
		tcfg.Exporter = telemetry.NOOP
	}
	tel := telemetry.New(tcfg)

	opts = append([]monitor.Option{
		monitor.WithClientOptions(traceroute.WithResolver(resolver)),
		monitor.WithTracerProvider(tel.TracerProvider()),
	}, opts...)
	mon, err := monitor.New(cfg.Monitor, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}

	a := &Agent{
		config:    cfg,
		api:       api.New(cfg.Api),
		telemetry: tel,
		monitor:   mon,
		cMonitor:  make(chan monitor.Config, 1),
		cErr:      make(chan error, components),
		cDone:     make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}
	if cfg.HasLoader() {
		a.loader = config.NewLoader(cfg, a.cMonitor)
	}
	return a, nil
}

// Run starts all components and blocks until the agent is shut down.
// It always returns an error wrapping [ErrFinalShutdown].
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()
	defer close(a.stopped)

	if err := a.telemetry.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := a.telemetry.RegisterMetrics(a.config.Name, a.monitor.GetMetricCollectors()...); err != nil {
		return err
	}

	if a.loader != nil {
		go func() {
			a.report(a.loader.Run(ctx))
		}()
	}

	go func() {
		a.report(a.startupAPI(ctx))
	}()

	go func() {
		a.report(a.monitor.Run(ctx))
	}()

	for {
		select {
		case cfg := <-a.cMonitor:
			if err := a.monitor.UpdateConfig(ctx, cfg); err != nil {
				log.ErrorContext(ctx, "Failed to apply monitor configuration", "error", err)
				continue
			}
			log.InfoContext(ctx, "Applied monitor configuration", "targets", len(cfg.Targets))
		case <-ctx.Done():
			a.shutdown(ctx)
		case err := <-a.cErr:
			if err != nil {
				log.ErrorContext(ctx, "Non-recoverable error in agent component", "error", err)
				a.shutdown(ctx)
			}
		case <-a.cDone:
			log.InfoContext(ctx, "Agent was shut down")
			return ErrFinalShutdown
		}
	}
}

// report hands the result of a component to the run loop.
// Results arriving after Run returned are dropped.
func (a *Agent) report(err error) {
	select {
	case a.cErr <- err:
	case <-a.stopped:
	}
}

// startupAPI registers the monitor routes and serves them.
func (a *Agent) startupAPI(ctx context.Context) error {
	if err := a.api.RegisterRoutes(ctx, a.monitor.Routes(a.telemetry.GetRegistry())...); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Error while registering routes", "error", err)
		return err
	}
	return a.api.Run(ctx)
}

// shutdown shuts down the agent and all managed components gracefully.
func (a *Agent) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	a.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down agent")
		var sErrs ErrShutdown
		sErrs.errAPI = a.api.Shutdown(ctx)
		sErrs.errTelemetry = a.telemetry.Shutdown(ctx)
		if a.loader != nil {
			a.loader.Shutdown(ctx)
		}
		a.monitor.Shutdown()

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		a.cDone <- struct{}{}
	})
}
