// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/hoptrace/internal/traceroute"
	"github.com/telekom/hoptrace/pkg/api"
	"github.com/telekom/hoptrace/pkg/config"
	"github.com/telekom/hoptrace/pkg/monitor"
	"github.com/telekom/hoptrace/pkg/telemetry"
)

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Name = "hoptrace-test"
	cfg.Api = api.Config{ListeningAddress: "127.0.0.1:0"}
	cfg.Monitor.Interval = time.Hour
	cfg.Resolver.CacheSize = 0
	return &cfg
}

func clientFactory() monitor.Option {
	return monitor.WithClientFactory(func(...traceroute.Observer) traceroute.Client {
		return &traceroute.ClientMock{
			DiscoverFunc: func(_ context.Context, host string, _ traceroute.Options) (traceroute.Route, error) {
				return traceroute.Route{Target: host, Address: host}, nil
			},
		}
	})
}

// TestAgent_Run_ContextCancel tests that after a context cancels the Run method
// will return an error and all started components will be shut down.
func TestAgent_Run_ContextCancel(t *testing.T) {
	a, err := New(newTestConfig(), clientFactory())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() { cErr <- a.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-cErr:
		assert.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down after context cancellation")
	}
}

// TestAgent_Run_Loader tests that configurations sent by the loader
// are applied to the monitor.
func TestAgent_Run_Loader(t *testing.T) {
	cfg := newTestConfig()
	a, err := New(cfg, clientFactory())
	require.NoError(t, err)

	loaded := monitor.DefaultConfig()
	loaded.Targets = []string{"example.com", "10.0.0.1"}
	invalid := monitor.DefaultConfig()
	invalid.Interval = 0

	shutdown := make(chan struct{})
	loader := &config.LoaderMock{
		RunFunc: func(ctx context.Context) error {
			a.cMonitor <- invalid
			a.cMonitor <- loaded
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-shutdown:
				return nil
			}
		},
		ShutdownFunc: func(context.Context) { close(shutdown) },
	}
	a.loader = loader

	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() { cErr <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(a.monitor.GetConfig().Targets) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, loaded.Targets, a.monitor.GetConfig().Targets)

	cancel()
	select {
	case err := <-cErr:
		assert.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down after context cancellation")
	}
	assert.Len(t, loader.ShutdownCalls(), 1)
}

func newTelemetryMock(initErr error) *telemetry.ProviderMock {
	registry := prometheus.NewRegistry()
	return &telemetry.ProviderMock{
		GetRegistryFunc:     func() *prometheus.Registry { return registry },
		InitTracingFunc:     func(context.Context) error { return initErr },
		RegisterMetricsFunc: func(string, ...prometheus.Collector) error { return nil },
		ShutdownFunc:        func(context.Context) error { return nil },
	}
}

func TestAgent_Run_telemetry(t *testing.T) {
	cfg := newTestConfig()
	a, err := New(cfg, clientFactory())
	require.NoError(t, err)
	tel := newTelemetryMock(nil)
	a.telemetry = tel

	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() { cErr <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(tel.RegisterMetricsCalls()) == 1
	}, time.Second, 10*time.Millisecond)
	call := tel.RegisterMetricsCalls()[0]
	assert.Equal(t, cfg.Name, call.Instance)
	assert.Len(t, call.RouteCollectors, len(a.monitor.GetMetricCollectors()))

	cancel()
	select {
	case err := <-cErr:
		assert.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down after context cancellation")
	}
	assert.Len(t, tel.InitTracingCalls(), 1)
	assert.Len(t, tel.ShutdownCalls(), 1)
}

func TestAgent_Run_tracingFails(t *testing.T) {
	a, err := New(newTestConfig(), clientFactory())
	require.NoError(t, err)
	tel := newTelemetryMock(errors.New("no exporter"))
	a.telemetry = tel

	err = a.Run(t.Context())
	assert.ErrorContains(t, err, "failed to initialize tracing")
	assert.NotErrorIs(t, err, ErrFinalShutdown)
	assert.Empty(t, tel.RegisterMetricsCalls())
}

// TestAgent_Run_componentFails tests that a failing component shuts the agent
// down and that components finishing afterwards never block.
func TestAgent_Run_componentFails(t *testing.T) {
	a, err := New(newTestConfig(), clientFactory())
	require.NoError(t, err)
	a.telemetry = newTelemetryMock(nil)
	loader := &config.LoaderMock{
		RunFunc:      func(context.Context) error { return errors.New("config source gone") },
		ShutdownFunc: func(context.Context) {},
	}
	a.loader = loader

	cErr := make(chan error, 1)
	go func() { cErr <- a.Run(t.Context()) }()

	select {
	case err := <-cErr:
		assert.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not shut down after a component failed")
	}
	assert.Len(t, loader.ShutdownCalls(), 1)
	assert.Equal(t, components, cap(a.cErr))

	// fill the buffer so only the stopped agent can release a late result
	for full := false; !full; {
		select {
		case a.cErr <- nil:
		default:
			full = true
		}
	}
	reported := make(chan struct{})
	go func() {
		a.report(errors.New("late result"))
		close(reported)
	}()
	select {
	case <-reported:
	case <-time.After(time.Second):
		t.Fatal("late component result blocked after the agent stopped")
	}
}

func TestNew_invalidMonitorConfig(t *testing.T) {
	cfg := newTestConfig()
	cfg.Monitor.Interval = 0
	_, err := New(cfg)
	assert.Error(t, err)
}
