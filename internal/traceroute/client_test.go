package traceroute

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// step scripts the answer of the listener for one hop.
type step struct {
	resp response
	rtt  time.Duration
	err  error
}

// probeLog records every channel the client opened.
type probeLog struct {
	ttls      []int
	listeners []*icmpListenerMock
	senders   []*udpSenderMock
}

func (l *probeLog) assertClosed(t *testing.T) {
	t.Helper()
	for i, lst := range l.listeners {
		assert.Len(t, lst.CloseCalls(), 1, "listener %d must be closed exactly once", i)
	}
	for i, s := range l.senders {
		assert.Len(t, s.CloseCalls(), 1, "sender %d must be closed exactly once", i)
	}
}

var testNames = map[string][]string{
	"192.0.2.1": {"router1.example.net."},
	"192.0.2.2": {"router2.example.net."},
}

// newTestClient returns a client whose sockets answer according to the steps.
func newTestClient(t *testing.T, steps []step, opts ...ClientOption) (*client, *probeLog) {
	t.Helper()
	mc := clock.NewMock()
	log := &probeLog{}
	r := &ResolverMock{
		LookupHostFunc: func(_ context.Context, host string) ([]string, error) {
			return []string{"203.0.113.9"}, nil
		},
		LookupAddrFunc: func(_ context.Context, addr string) ([]string, error) {
			if names, ok := testNames[addr]; ok {
				return names, nil
			}
			return nil, errors.New("no such host")
		},
	}

	defaults := []ClientOption{WithClock(mc), WithPlatform("linux"), WithResolver(r)}
	c := NewClient(append(defaults, opts...)...).(*client)
	c.newListener = func(bool) (icmpListener, error) {
		lst := &icmpListenerMock{
			ReadFunc: func(ctx context.Context, p probe) (response, error) {
				_, ok := ctx.Deadline()
				assert.True(t, ok, "reads must be bounded by a deadline")
				s := steps[len(log.ttls)-1]
				mc.Add(s.rtt)
				return s.resp, s.err
			},
			CloseFunc: func() error { return nil },
		}
		log.listeners = append(log.listeners, lst)
		return lst, nil
	}
	c.dialUDP = func(_ context.Context, addr netip.Addr, port, ttl int) (udpSender, error) {
		log.ttls = append(log.ttls, ttl)
		s := &udpSenderMock{
			SendFunc:      func() error { return nil },
			LocalPortFunc: func() int { return 40000 + ttl },
			CloseFunc:     func() error { return nil },
		}
		log.senders = append(log.senders, s)
		return s, nil
	}
	return c, log
}

func timeExceeded(from string) response {
	return response{outcome: outcomeTimeExceeded, from: from, icmpType: 11}
}

func unreachable(from string) response {
	return response{outcome: outcomeUnreachable, from: from, icmpType: 3, code: 3}
}

func TestClient_Discover(t *testing.T) {
	opts := Options{MaxHops: 5, Port: DefaultPort, Timeout: 200 * time.Millisecond}

	tests := []struct {
		name  string
		host  string
		steps []step
		want  []Hop
	}{
		{
			name:  "destination is first hop",
			host:  "127.0.0.1",
			steps: []step{{resp: unreachable("127.0.0.1"), rtt: 300 * time.Microsecond}},
			want:  []Hop{{Step: 1, Name: "127.0.0.1", Address: "127.0.0.1", ElapsedMS: 0, Reached: true}},
		},
		{
			name: "routers and silent hop",
			host: "203.0.113.9",
			steps: []step{
				{resp: timeExceeded("192.0.2.1"), rtt: 3 * time.Millisecond},
				{resp: timedOut},
				{resp: timeExceeded("192.0.2.7"), rtt: 9*time.Millisecond + 700*time.Microsecond},
				{resp: unreachable("203.0.113.9"), rtt: 12 * time.Millisecond},
			},
			want: []Hop{
				{Step: 1, Name: "router1.example.net", Address: "192.0.2.1", ElapsedMS: 3},
				{Step: 2, Name: MissMarker, Address: MissMarker, ElapsedMS: 200},
				{Step: 3, Name: "192.0.2.7", Address: "192.0.2.7", ElapsedMS: 9},
				{Step: 4, Name: "203.0.113.9", Address: "203.0.113.9", ElapsedMS: 12, Reached: true},
			},
		},
		{
			name: "destination answers with the host name",
			host: "example.com",
			steps: []step{
				{resp: timeExceeded("192.0.2.2"), rtt: time.Millisecond},
				{resp: unreachable("203.0.113.9"), rtt: 2 * time.Millisecond},
			},
			want: []Hop{
				{Step: 1, Name: "router2.example.net", Address: "192.0.2.2", ElapsedMS: 1},
				{Step: 2, Name: "example.com", Address: "203.0.113.9", ElapsedMS: 2, Reached: true},
			},
		},
		{
			name: "unclassified message is recorded as miss",
			host: "203.0.113.9",
			steps: []step{
				{resp: response{outcome: outcomeUnclassified, from: "192.0.2.1", icmpType: 12}, rtt: time.Millisecond},
				{resp: unreachable("203.0.113.9"), rtt: 5 * time.Millisecond},
			},
			want: []Hop{
				{Step: 1, Name: MissMarker, Address: MissMarker, ElapsedMS: 200},
				{Step: 2, Name: "203.0.113.9", Address: "203.0.113.9", ElapsedMS: 5, Reached: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var observed []Hop
			c, log := newTestClient(t, tt.steps, WithObservers(ObserverFunc(func(_ context.Context, h Hop) {
				observed = append(observed, h)
			})))

			route, err := c.Discover(t.Context(), tt.host, opts)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, route.Hops); diff != "" {
				t.Errorf("Discover() hops mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.host, route.Target)
			assert.Equal(t, route.Hops, observed, "observers see every hop in order")

			wantTTLs := make([]int, len(tt.want))
			for i := range wantTTLs {
				wantTTLs[i] = i + 1
			}
			assert.Equal(t, wantTTLs, log.ttls, "no probes after the destination was reached")
			// One listener for the privilege probe plus one per hop.
			assert.Len(t, log.listeners, len(tt.want)+1)
			log.assertClosed(t)

			for i, lst := range log.listeners[1:] {
				calls := lst.ReadCalls()
				require.Len(t, calls, 1)
				assert.Equal(t, probe{srcPort: 40000 + i + 1, dstPort: opts.Port}, calls[0].P)
			}
		})
	}
}

func TestClient_Discover_notReached(t *testing.T) {
	opts := Options{MaxHops: 2, Port: DefaultPort, Timeout: 50 * time.Millisecond}
	steps := []step{{resp: timedOut}, {resp: timedOut}, {resp: timedOut}}

	var observed []Hop
	c, log := newTestClient(t, steps, WithObservers(ObserverFunc(func(_ context.Context, h Hop) {
		observed = append(observed, h)
	})))

	route, err := c.Discover(t.Context(), "198.51.100.254", opts)
	require.ErrorIs(t, err, ErrNotReached)
	assert.Empty(t, route.Hops, "partial routes are discarded")

	assert.Equal(t, []int{1, 2, 3}, log.ttls, "the budget allows max hops + 1 probes")
	want := []Hop{
		{Step: 1, Name: MissMarker, Address: MissMarker, ElapsedMS: 50},
		{Step: 2, Name: MissMarker, Address: MissMarker, ElapsedMS: 50},
		{Step: 3, Name: MissMarker, Address: MissMarker, ElapsedMS: 50},
	}
	if diff := cmp.Diff(want, observed); diff != "" {
		t.Errorf("observed hops mismatch (-want +got):\n%s", diff)
	}
	log.assertClosed(t)
}

func TestClient_Discover_stepsAreContiguous(t *testing.T) {
	for maxHops := 1; maxHops <= 8; maxHops++ {
		steps := make([]step, maxHops+1)
		for i := range steps {
			if i%2 == 0 {
				steps[i] = step{resp: timedOut}
				continue
			}
			steps[i] = step{resp: timeExceeded("192.0.2.1"), rtt: time.Millisecond}
		}

		var observed []Hop
		c, _ := newTestClient(t, steps, WithObservers(ObserverFunc(func(_ context.Context, h Hop) {
			observed = append(observed, h)
		})))
		_, err := c.Discover(t.Context(), "198.51.100.254", Options{MaxHops: maxHops, Port: DefaultPort, Timeout: time.Millisecond})
		require.ErrorIs(t, err, ErrNotReached)

		require.Len(t, observed, maxHops+1)
		for i, h := range observed {
			assert.Equal(t, i+1, h.Step)
			assert.GreaterOrEqual(t, h.ElapsedMS, int64(0))
		}
	}
}

func TestClient_Discover_fatalErrors(t *testing.T) {
	opts := DefaultOptions()

	t.Run("unresolvable host", func(t *testing.T) {
		c, log := newTestClient(t, nil)
		c.resolver = &ResolverMock{
			LookupHostFunc: func(_ context.Context, _ string) ([]string, error) {
				return nil, errors.New("no such host")
			},
		}

		_, err := c.Discover(t.Context(), "example.invalid", opts)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "example.invalid", resErr.Host)
		assert.Empty(t, log.listeners, "no socket is opened before resolution succeeded")
	})

	t.Run("malformed host", func(t *testing.T) {
		c, log := newTestClient(t, nil)

		_, err := c.Discover(t.Context(), "1.2.3.4.5", opts)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Empty(t, log.listeners)
	})

	t.Run("incompatible platform", func(t *testing.T) {
		c, log := newTestClient(t, nil, WithPlatform("Windows"))

		_, err := c.Discover(t.Context(), "127.0.0.1", opts)
		var compatErr *CompatibilityError
		require.ErrorAs(t, err, &compatErr)
		assert.Equal(t, "Windows", compatErr.Platform)
		assert.Empty(t, log.listeners)
	})

	t.Run("missing privileges", func(t *testing.T) {
		c, log := newTestClient(t, nil)
		c.newListener = func(bool) (icmpListener, error) {
			return nil, &PrivilegeError{Err: &os.SyscallError{Syscall: "socket", Err: syscall.EPERM}}
		}

		_, err := c.Discover(t.Context(), "127.0.0.1", opts)
		var privErr *PrivilegeError
		require.ErrorAs(t, err, &privErr)
		assert.Empty(t, log.ttls, "no hop is probed without privileges")
	})

	t.Run("invalid options", func(t *testing.T) {
		c, log := newTestClient(t, nil)

		_, err := c.Discover(t.Context(), "127.0.0.1", Options{MaxHops: 0, Port: 70000, Timeout: 0})
		require.Error(t, err)
		assert.Empty(t, log.listeners)
	})

	t.Run("socket failure mid run", func(t *testing.T) {
		c, log := newTestClient(t, []step{{resp: timedOut}})
		dial := c.dialUDP
		c.dialUDP = func(ctx context.Context, addr netip.Addr, port, ttl int) (udpSender, error) {
			if ttl == 2 {
				return nil, syscall.EMFILE
			}
			return dial(ctx, addr, port, ttl)
		}

		route, err := c.Discover(t.Context(), "127.0.0.1", opts)
		require.ErrorIs(t, err, syscall.EMFILE)
		assert.Empty(t, route.Hops)
		log.assertClosed(t)
	})

	t.Run("read failure", func(t *testing.T) {
		readErr := errors.New("connection reset")
		c, log := newTestClient(t, []step{{err: readErr}})

		_, err := c.Discover(t.Context(), "127.0.0.1", opts)
		require.ErrorIs(t, err, readErr)
		log.assertClosed(t)
	})
}

func TestClient_Discover_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	steps := []step{{resp: timedOut}, {resp: timedOut}, {resp: timedOut}}
	c, log := newTestClient(t, steps, WithObservers(ObserverFunc(func(context.Context, Hop) {
		cancel()
	})))

	_, err := c.Discover(ctx, "198.51.100.254", Options{MaxHops: 2, Port: DefaultPort, Timeout: time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, log.ttls, "cancellation is checked before every hop")
	log.assertClosed(t)
}

func TestClient_Discover_mappedAddress(t *testing.T) {
	c, log := newTestClient(t, []step{{resp: unreachable("203.0.113.9"), rtt: time.Millisecond}})
	c.resolver = &ResolverMock{
		LookupHostFunc: func(_ context.Context, _ string) ([]string, error) {
			return []string{"::ffff:203.0.113.9"}, nil
		},
	}
	var dialed []netip.Addr
	dial := c.dialUDP
	c.dialUDP = func(ctx context.Context, addr netip.Addr, port, ttl int) (udpSender, error) {
		dialed = append(dialed, addr)
		return dial(ctx, addr, port, ttl)
	}

	route, err := c.Discover(t.Context(), "mapped.example", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", route.Address, "the route reports the dialed address")
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("203.0.113.9")}, dialed)
	log.assertClosed(t)
}

func TestClient_Discover_tracerProvider(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	steps := []step{
		{resp: timeExceeded("192.0.2.1"), rtt: time.Millisecond},
		{resp: unreachable("203.0.113.9"), rtt: 2 * time.Millisecond},
	}
	c, _ := newTestClient(t, steps, WithTracerProvider(tp))

	_, err := c.Discover(t.Context(), "203.0.113.9", DefaultOptions())
	require.NoError(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 3, "one span per hop and one for the discovery")

	discovery := spans[len(spans)-1]
	assert.Equal(t, "Discover", discovery.Name)
	assert.Equal(t, tracerName, discovery.InstrumentationScope.Name)
	assert.Contains(t, discovery.Attributes, attribute.String("traceroute.target.address", "203.0.113.9"))
	assert.Contains(t, discovery.Attributes, attribute.Int("traceroute.target.hops", 2))

	for i, hop := range spans[:2] {
		assert.Equal(t, discovery.SpanContext.SpanID(), hop.Parent.SpanID(), "hop span %d is a child of the discovery", i)
		assert.Contains(t, hop.Attributes, attribute.Int("traceroute.target.ttl", i+1))
	}
}
