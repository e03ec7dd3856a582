package traceroute

import (
	"context"
	"errors"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/hoptrace/test"
)

// requireRawSockets skips the test if raw ICMP sockets cannot be opened.
func requireRawSockets(t *testing.T) {
	t.Helper()
	if err := DefaultGate().Check(runtime.GOOS); err != nil {
		t.Skipf("platform not supported: %v", err)
	}
	l, err := newRawListener(false)
	if err != nil {
		t.Skipf("raw ICMP sockets unavailable: %v", err)
	}
	_ = l.Close()
}

func TestDiscover_loopback(t *testing.T) {
	requireRawSockets(t)

	route, err := NewClient().Discover(t.Context(), "127.0.0.1", Options{
		MaxHops: 5,
		Port:    DefaultPort,
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, route.Hops, 1)

	hop := route.Hops[0]
	assert.Equal(t, 1, hop.Step)
	assert.Equal(t, "127.0.0.1", hop.Name)
	assert.True(t, hop.Reached)
	assert.Less(t, hop.ElapsedMS, int64(200))
}

func TestDiscover_documentationAddress(t *testing.T) {
	test.MarkAsShort(t)
	requireRawSockets(t)

	var observed []Hop
	c := NewClient(WithObservers(ObserverFunc(func(_ context.Context, h Hop) {
		observed = append(observed, h)
	})))

	_, err := c.Discover(t.Context(), "198.51.100.254", Options{
		MaxHops: 2,
		Port:    DefaultPort,
		Timeout: 50 * time.Millisecond,
	})
	switch {
	case errors.Is(err, syscall.ENETUNREACH):
		t.Skip("no route to the documentation network")
	case err == nil:
		t.Skip("a router answered for the documentation network")
	}
	require.ErrorIs(t, err, ErrNotReached)

	require.Len(t, observed, 3)
	for i, h := range observed {
		assert.Equal(t, i+1, h.Step)
		if h.Missed() {
			assert.Equal(t, int64(50), h.ElapsedMS)
		}
	}
}
