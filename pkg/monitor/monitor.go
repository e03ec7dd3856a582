// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/hoptrace/internal/helper"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/internal/traceroute"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Name is used for the tracer and the OpenAPI document.
const Name = "monitor"

// ClientFactory creates a discovery client notifying the given observers.
type ClientFactory func(observers ...traceroute.Observer) traceroute.Client

// Option configures the [Monitor] returned by [New].
type Option func(*Monitor)

// WithClientFactory replaces the factory creating one client per discovery attempt.
func WithClientFactory(f ClientFactory) Option {
	return func(m *Monitor) {
		m.newClient = f
	}
}

// WithClientOptions sets the options of the clients created by the default factory.
func WithClientOptions(opts ...traceroute.ClientOption) Option {
	return func(m *Monitor) {
		m.clientOpts = append(m.clientOpts, opts...)
	}
}

// WithTracerProvider sets the provider of the run spans and of the discovery
// and hop spans of the clients created by the default factory.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Monitor) {
		m.tracer = tp.Tracer(Name)
		m.clientOpts = append(m.clientOpts, traceroute.WithTracerProvider(tp))
	}
}

// WithClock sets the clock driving the run interval and result timestamps.
func WithClock(clk clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = clk
	}
}

// Monitor periodically discovers the routes to all configured targets and
// keeps the latest result of every target.
type Monitor struct {
	mu      sync.Mutex
	config  Config
	results map[string]Result

	clock      clock.Clock
	clientOpts []traceroute.ClientOption
	newClient  ClientFactory
	metrics    metrics
	tracer     trace.Tracer

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a monitor. The configuration must be valid.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		config:  cfg,
		results: map[string]Result{},
		clock:   clock.New(),
		metrics: newMetrics(),
		tracer:  otel.Tracer(Name),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	if m.newClient == nil {
		m.newClient = func(observers ...traceroute.Observer) traceroute.Client {
			return traceroute.NewClient(append(slices.Clone(m.clientOpts), traceroute.WithObservers(observers...))...)
		}
	}
	return m, nil
}

// Run discovers all targets every interval until the context is canceled
// or Shutdown is called.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	log.InfoContext(ctx, "Starting route monitor", "interval", m.GetConfig().Interval.String())
	for {
		select {
		case <-ctx.Done():
			log.ErrorContext(ctx, "Context canceled", "error", ctx.Err())
			return ctx.Err()
		case <-m.done:
			return nil
		case <-m.clock.After(m.GetConfig().Interval):
			m.check(ctx)
			log.DebugContext(ctx, "Successfully finished route monitor run")
		}
	}
}

// Shutdown stops the run loop. It is safe to call it more than once.
func (m *Monitor) Shutdown() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

// GetConfig returns the current configuration of the monitor
func (m *Monitor) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.config
	cfg.Targets = slices.Clone(m.config.Targets)
	return cfg
}

// UpdateConfig replaces the configuration. Results and metrics of targets
// that are no longer configured are removed.
func (m *Monitor) UpdateConfig(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, target := range m.config.Targets {
		if slices.Contains(cfg.Targets, target) {
			continue
		}
		delete(m.results, target)
		if err := m.metrics.Remove(target); err != nil {
			var mErr ErrMetricNotFound
			if !errors.As(err, &mErr) {
				return err
			}
			logger.FromContext(ctx).DebugContext(ctx, "Target removed before its first run", "target", target)
		}
	}

	m.config = cfg
	m.config.Targets = slices.Clone(cfg.Targets)
	return nil
}

// Results returns the latest result of every target.
func (m *Monitor) Results() map[string]Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.results)
}

// Result returns the latest result of one target.
func (m *Monitor) Result(target string) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[target]
	return r, ok
}

// GetMetricCollectors returns the prometheus collectors of the monitor
func (m *Monitor) GetMetricCollectors() []prometheus.Collector {
	return m.metrics.List()
}

// check discovers all targets concurrently and stores their results.
func (m *Monitor) check(ctx context.Context) map[string]Result {
	log := logger.FromContext(ctx)
	ctx, span := m.tracer.Start(ctx, "monitor.check")
	defer span.End()

	cfg := m.GetConfig()
	if len(cfg.Targets) == 0 {
		log.WarnContext(ctx, "No targets configured for route monitor")
		return map[string]Result{}
	}

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("monitor.run_id", runID))

	type run struct {
		res     Result
		outcome string
	}
	runs := make([]run, len(cfg.Targets))
	var g errgroup.Group
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, target := range cfg.Targets {
		g.Go(func() error {
			res, err := m.discover(ctx, runID, target, cfg)
			runs[i] = run{res: res, outcome: outcomeOf(err)}
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]Result, len(runs))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range runs {
		results[r.res.Target] = r.res
		// skip targets removed while the run was in flight
		if slices.Contains(m.config.Targets, r.res.Target) {
			m.results[r.res.Target] = r.res
			m.metrics.Set(r.res, r.outcome)
		}
	}
	return results
}

// discover finds the route to one target, retrying transient failures.
// The returned error is the final error of the discovery, already described in the result.
func (m *Monitor) discover(ctx context.Context, runID, target string, cfg Config) (Result, error) {
	log := logger.FromContext(ctx).With("target", target, "runId", runID)
	ctx = logger.IntoContext(ctx, log)
	span := trace.SpanFromContext(ctx)

	var (
		hops      []traceroute.Hop
		route     traceroute.Route
		permanent error
	)
	effector := func(ctx context.Context) error {
		hops = []traceroute.Hop{}
		client := m.newClient(traceroute.ObserverFunc(func(_ context.Context, h traceroute.Hop) {
			hops = append(hops, h)
		}))

		var err error
		route, err = client.Discover(ctx, target, cfg.Options)
		if err != nil && traceroute.IsPermanent(err) {
			permanent = err
			return nil
		}
		return err
	}

	err := helper.Retry(effector, cfg.Retry)(ctx)
	if err == nil {
		err = permanent
	}

	res := Result{
		RunID:     runID,
		Target:    target,
		Hops:      hops,
		Timestamp: m.clock.Now().UTC(),
	}
	if res.Hops == nil {
		res.Hops = []traceroute.Hop{}
	}
	if err != nil {
		res.Error = err.Error()
		log.WarnContext(ctx, "Route discovery failed", "error", err)
		span.AddEvent("Route discovery failed", trace.WithAttributes(
			attribute.String("monitor.target", target),
			attribute.String("error", err.Error()),
		))
		if !errors.Is(err, traceroute.ErrNotReached) {
			span.SetStatus(codes.Error, "route discovery failed")
		}
	} else {
		res.Address = route.Address
		res.Reached = true
	}
	return res, err
}
