// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/hoptrace/internal/helper"
	"github.com/telekom/hoptrace/internal/traceroute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeRoutes answers discoveries with a fixed outcome per target.
type fakeRoutes map[string]struct {
	hops []traceroute.Hop
	err  error
}

func (f fakeRoutes) factory(calls *atomic.Int32) ClientFactory {
	return func(observers ...traceroute.Observer) traceroute.Client {
		return &traceroute.ClientMock{
			DiscoverFunc: func(ctx context.Context, host string, opts traceroute.Options) (traceroute.Route, error) {
				if calls != nil {
					calls.Add(1)
				}
				want, ok := f[host]
				if !ok {
					return traceroute.Route{}, &traceroute.ResolutionError{Host: host, Err: errors.New("no such host")}
				}
				for _, h := range want.hops {
					for _, o := range observers {
						o.OnHop(ctx, h)
					}
				}
				if want.err != nil {
					return traceroute.Route{}, want.err
				}
				return traceroute.Route{Target: host, Address: want.hops[len(want.hops)-1].Address, Hops: want.hops}, nil
			},
		}
	}
}

func hop(step int, addr string, reached bool) traceroute.Hop {
	return traceroute.Hop{Step: step, Name: addr, Address: addr, ElapsedMS: int64(step * 10), Reached: reached}
}

func miss(step int) traceroute.Hop {
	return traceroute.Hop{Step: step, Name: traceroute.MissMarker, Address: traceroute.MissMarker, ElapsedMS: 50}
}

func newTestMonitor(t *testing.T, cfg Config, routes fakeRoutes, calls *atomic.Int32) (*Monitor, *clock.Mock) {
	t.Helper()
	mc := clock.NewMock()
	mc.Set(now)
	m, err := New(cfg, WithClock(mc), WithClientFactory(routes.factory(calls)))
	require.NoError(t, err)
	return m, mc
}

func testConfig(targets ...string) Config {
	cfg := DefaultConfig()
	cfg.Targets = targets
	cfg.Interval = time.Minute
	cfg.Retry = helper.RetryConfig{Count: 2, Delay: 0}
	return cfg
}

func TestMonitor_check(t *testing.T) {
	routes := fakeRoutes{
		"10.0.0.3": {hops: []traceroute.Hop{hop(1, "10.0.0.1", false), hop(2, "10.0.0.2", false), hop(3, "10.0.0.3", true)}},
		"198.51.100.254": {
			hops: []traceroute.Hop{miss(1), miss(2), miss(3)},
			err:  traceroute.ErrNotReached,
		},
		"darwin.example": {err: &traceroute.CompatibilityError{Platform: "Darwin"}},
	}

	cases := []struct {
		name      string
		targets   []string
		want      map[string]Result
		wantCalls int32
	}{
		{
			name:    "reached",
			targets: []string{"10.0.0.3"},
			want: map[string]Result{
				"10.0.0.3": {
					Target:    "10.0.0.3",
					Address:   "10.0.0.3",
					Reached:   true,
					Hops:      routes["10.0.0.3"].hops,
					Timestamp: now,
				},
			},
			wantCalls: 1,
		},
		{
			name:    "not reached keeps observed hops and is not retried",
			targets: []string{"198.51.100.254"},
			want: map[string]Result{
				"198.51.100.254": {
					Target:    "198.51.100.254",
					Hops:      routes["198.51.100.254"].hops,
					Error:     traceroute.ErrNotReached.Error(),
					Timestamp: now,
				},
			},
			wantCalls: 1,
		},
		{
			name:    "incompatible platform is not retried",
			targets: []string{"darwin.example"},
			want: map[string]Result{
				"darwin.example": {
					Target:    "darwin.example",
					Hops:      []traceroute.Hop{},
					Error:     `raw sockets not compatible with platform "Darwin"`,
					Timestamp: now,
				},
			},
			wantCalls: 1,
		},
		{
			name:    "resolution failure is retried",
			targets: []string{"unknown.example"},
			want: map[string]Result{
				"unknown.example": {
					Target:    "unknown.example",
					Hops:      []traceroute.Hop{},
					Error:     (&traceroute.ResolutionError{Host: "unknown.example", Err: errors.New("no such host")}).Error(),
					Timestamp: now,
				},
			},
			wantCalls: 3,
		},
		{
			name:      "multiple targets",
			targets:   []string{"10.0.0.3", "darwin.example"},
			wantCalls: 2,
			want: map[string]Result{
				"10.0.0.3": {
					Target:    "10.0.0.3",
					Address:   "10.0.0.3",
					Reached:   true,
					Hops:      routes["10.0.0.3"].hops,
					Timestamp: now,
				},
				"darwin.example": {
					Target:    "darwin.example",
					Hops:      []traceroute.Hop{},
					Error:     `raw sockets not compatible with platform "Darwin"`,
					Timestamp: now,
				},
			},
		},
		{
			name:    "no targets",
			targets: nil,
			want:    map[string]Result{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var calls atomic.Int32
			m, _ := newTestMonitor(t, testConfig(c.targets...), routes, &calls)

			got := m.check(t.Context())

			ignoreRunID := cmpopts.IgnoreFields(Result{}, "RunID")
			if diff := cmp.Diff(c.want, got, ignoreRunID); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.want, m.Results(), ignoreRunID); diff != "" {
				t.Errorf("unexpected stored results (-want +got):\n%s", diff)
			}
			assert.Equal(t, c.wantCalls, calls.Load())

			runIDs := map[string]struct{}{}
			for _, r := range got {
				assert.NotEmpty(t, r.RunID)
				runIDs[r.RunID] = struct{}{}
			}
			assert.LessOrEqual(t, len(runIDs), 1, "all results of a run share the run id")
		})
	}
}

func TestMonitor_check_metrics(t *testing.T) {
	routes := fakeRoutes{
		"10.0.0.3": {hops: []traceroute.Hop{hop(1, "10.0.0.1", false), miss(2), hop(3, "10.0.0.3", true)}},
		"198.51.100.254": {
			hops: []traceroute.Hop{miss(1), miss(2)},
			err:  traceroute.ErrNotReached,
		},
	}
	m, _ := newTestMonitor(t, testConfig("10.0.0.3", "198.51.100.254"), routes, nil)

	m.check(t.Context())
	m.check(t.Context())

	assert.InDelta(t, 3, testutil.ToFloat64(m.metrics.hops.WithLabelValues("10.0.0.3")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.metrics.reached.WithLabelValues("10.0.0.3")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.metrics.misses.WithLabelValues("10.0.0.3")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.metrics.runs.WithLabelValues("10.0.0.3", outcomeReached)), 0)

	assert.InDelta(t, 0, testutil.ToFloat64(m.metrics.reached.WithLabelValues("198.51.100.254")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.metrics.misses.WithLabelValues("198.51.100.254")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.metrics.runs.WithLabelValues("198.51.100.254", outcomeNotReached)), 0)

	// only the reached target has answered hops
	assert.Equal(t, 1, testutil.CollectAndCount(m.metrics.latency, "hoptrace_hop_latency_seconds"))
}

func TestMonitor_UpdateConfig(t *testing.T) {
	routes := fakeRoutes{
		"10.0.0.3": {hops: []traceroute.Hop{hop(1, "10.0.0.3", true)}},
		"10.0.0.4": {hops: []traceroute.Hop{hop(1, "10.0.0.4", true)}},
	}
	m, _ := newTestMonitor(t, testConfig("10.0.0.3", "10.0.0.4"), routes, nil)
	m.check(t.Context())
	require.Len(t, m.Results(), 2)

	t.Run("invalid config is rejected", func(t *testing.T) {
		cfg := testConfig("10.0.0.3")
		cfg.Interval = 0
		var want ErrInvalidConfig
		assert.ErrorAs(t, m.UpdateConfig(t.Context(), cfg), &want)
		assert.Len(t, m.GetConfig().Targets, 2)
	})

	t.Run("removed target loses results and metrics", func(t *testing.T) {
		require.NoError(t, m.UpdateConfig(t.Context(), testConfig("10.0.0.3", "10.0.0.5")))

		_, ok := m.Result("10.0.0.4")
		assert.False(t, ok)
		_, ok = m.Result("10.0.0.3")
		assert.True(t, ok)
		assert.Equal(t, 1, testutil.CollectAndCount(m.metrics.hops, "hoptrace_route_hops"))
		assert.Equal(t, 1, testutil.CollectAndCount(m.metrics.runs, "hoptrace_route_runs_total"))
		assert.Equal(t, []string{"10.0.0.3", "10.0.0.5"}, m.GetConfig().Targets)
	})

	t.Run("removing a target that never ran", func(t *testing.T) {
		assert.NoError(t, m.UpdateConfig(t.Context(), testConfig("10.0.0.3")))
	})
}

func TestMonitor_Run(t *testing.T) {
	routes := fakeRoutes{
		"10.0.0.3": {hops: []traceroute.Hop{hop(1, "10.0.0.3", true)}},
	}

	t.Run("runs every interval until shutdown", func(t *testing.T) {
		var calls atomic.Int32
		m, mc := newTestMonitor(t, testConfig("10.0.0.3"), routes, &calls)

		var wg sync.WaitGroup
		var runErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			runErr = m.Run(t.Context())
		}()

		require.Eventually(t, func() bool {
			mc.Add(time.Minute)
			return calls.Load() >= 2
		}, time.Second, 10*time.Millisecond)

		m.Shutdown()
		m.Shutdown()
		wg.Wait()
		assert.NoError(t, runErr)
		_, ok := m.Result("10.0.0.3")
		assert.True(t, ok)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		m, _ := newTestMonitor(t, testConfig("10.0.0.3"), routes, nil)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		assert.ErrorIs(t, m.Run(ctx), context.Canceled)
	})
}

func TestNew_invalidConfig(t *testing.T) {
	_, err := New(Config{})
	var want ErrInvalidConfig
	assert.ErrorAs(t, err, &want)
}

func TestMonitor_WithTracerProvider(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	routes := fakeRoutes{"example.com": {hops: []traceroute.Hop{hop(1, "192.0.2.1", false), hop(2, "93.184.215.14", true)}}}
	mc := clock.NewMock()
	m, err := New(testConfig("example.com"), WithClock(mc), WithTracerProvider(tp), WithClientFactory(routes.factory(nil)))
	require.NoError(t, err)
	assert.Len(t, m.clientOpts, 1, "clients of the default factory share the provider")

	m.check(t.Context())

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "monitor.check", spans[0].Name)
	assert.Equal(t, Name, spans[0].InstrumentationScope.Name)
}
