// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net/netip"
	"runtime"

	"github.com/benbjohnson/clock"
	"github.com/telekom/hoptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*client)(nil)

// Client discovers the path to a host.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Discover probes the path to the host hop by hop.
	// Returns the route if the destination answered within the hop budget
	// and [ErrNotReached] otherwise.
	Discover(ctx context.Context, host string, opts Options) (Route, error)
}

// Observer is notified of every hop as soon as it is recorded.
type Observer interface {
	OnHop(ctx context.Context, hop Hop)
}

// ObserverFunc adapts a function to the [Observer] interface.
type ObserverFunc func(ctx context.Context, hop Hop)

// OnHop calls f(ctx, hop).
func (f ObserverFunc) OnHop(ctx context.Context, hop Hop) {
	f(ctx, hop)
}

// ClientOption configures the [Client] returned by [NewClient].
type ClientOption func(*client)

// WithResolver sets the resolver used for forward and reverse lookups.
func WithResolver(r Resolver) ClientOption {
	return func(c *client) {
		c.resolver = r
	}
}

// WithObservers adds observers notified of every recorded hop.
func WithObservers(obs ...Observer) ClientOption {
	return func(c *client) {
		c.observers = append(c.observers, obs...)
	}
}

// WithClock sets the clock used to measure round-trip times and per-hop timeouts.
func WithClock(clk clock.Clock) ClientOption {
	return func(c *client) {
		c.clock = clk
	}
}

// WithGate replaces the default compatibility gate.
func WithGate(g Gate) ClientOption {
	return func(c *client) {
		c.gate = g
	}
}

// WithTracerProvider sets the provider of the discovery and hop spans.
// Without it the provider of the span in the discovery context is used.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *client) {
		c.tracerProvider = tp
	}
}

// WithPlatform overrides the platform checked against the gate.
func WithPlatform(platform string) ClientOption {
	return func(c *client) {
		c.platform = platform
	}
}

// tracerName is the instrumentation scope of the discovery and hop spans.
const tracerName = "traceroute.client"

type client struct {
	resolver  Resolver
	gate      Gate
	platform  string
	clock     clock.Clock
	observers []Observer

	tracerProvider trace.TracerProvider

	// newListener opens the ICMP receive channel of a hop.
	newListener func(v6 bool) (icmpListener, error)
	// dialUDP opens the UDP send channel of a hop.
	dialUDP func(ctx context.Context, addr netip.Addr, port, ttl int) (udpSender, error)
}

// NewClient returns a [Client] probing with UDP datagrams and raw ICMP sockets.
func NewClient(opts ...ClientOption) Client {
	c := &client{
		resolver:    NewSystemResolver(),
		gate:        DefaultGate(),
		platform:    runtime.GOOS,
		clock:       clock.New(),
		newListener: newRawListener,
		dialUDP:     dialUDP,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *client) Discover(ctx context.Context, host string, opts Options) (Route, error) {
	tp := c.tracerProvider
	if tp == nil {
		tp = trace.SpanFromContext(ctx).TracerProvider()
	}
	tracer := tp.Tracer(tracerName)
	ctx, sp := tracer.Start(ctx, "Discover", trace.WithAttributes(
		attribute.String("traceroute.target.host", host),
		attribute.Int("traceroute.options.max_hops", opts.MaxHops),
		attribute.Int("traceroute.options.port", opts.Port),
		attribute.Stringer("traceroute.options.timeout", opts.Timeout),
	))
	defer sp.End()

	log := logger.FromContext(ctx).With("target", host)
	ctx = logger.IntoContext(ctx, log)

	if err := opts.Validate(); err != nil {
		return Route{}, recordError(ctx, fmt.Errorf("invalid options: %w", err))
	}

	address, err := Resolve(ctx, c.resolver, host)
	if err != nil {
		return Route{}, recordError(ctx, err)
	}
	if err = c.gate.Check(c.platform); err != nil {
		return Route{}, recordError(ctx, err)
	}

	addr, err := netip.ParseAddr(address)
	if err != nil {
		return Route{}, recordError(ctx, &ResolutionError{Host: host, Err: err})
	}
	addr = addr.Unmap()
	sp.SetAttributes(attribute.String("traceroute.target.address", addr.String()))

	if err = c.checkPrivilege(ctx, is6(addr)); err != nil {
		return Route{}, recordError(ctx, err)
	}

	log.DebugContext(ctx, "Starting discovery", "address", addr.String(), "maxHops", opts.MaxHops)
	route := Route{Target: host, Address: addr.String()}
	for ttl := 1; ttl <= opts.MaxHops+1; ttl++ {
		if err = ctx.Err(); err != nil {
			return Route{}, recordError(ctx, err)
		}

		hop, herr := c.hop(ctx, tracer, host, addr, ttl, opts)
		if herr != nil {
			return Route{}, recordError(ctx, herr)
		}

		route.Hops = append(route.Hops, hop)
		c.notify(ctx, hop)
		if hop.Reached {
			sp.SetAttributes(attribute.Int("traceroute.target.hops", len(route.Hops)))
			log.InfoContext(ctx, "Destination reached", "hops", len(route.Hops))
			return route, nil
		}
	}

	return Route{}, recordError(ctx, ErrNotReached)
}

// checkPrivilege opens and closes one ICMP listener to fail before any hop is probed.
func (c *client) checkPrivilege(ctx context.Context, v6 bool) error {
	l, err := c.newListener(v6)
	if err != nil {
		if isFatalError(err) {
			return err
		}
		return wrapError(ctx, err, "failed to open ICMP listener")
	}
	return l.Close()
}

// hop probes a single TTL. Both channels are closed before it returns.
func (c *client) hop(ctx context.Context, tracer trace.Tracer, host string, addr netip.Addr, ttl int, opts Options) (Hop, error) {
	ctx, span := tracer.Start(ctx, addr.String(), trace.WithAttributes(
		attribute.String("traceroute.target.address", addr.String()),
		attribute.Int("traceroute.target.ttl", ttl),
	))
	defer span.End()

	log := logger.FromContext(ctx).With("ttl", ttl)
	ctx = logger.IntoContext(ctx, log)

	listener, err := c.newListener(is6(addr))
	if err != nil {
		if isFatalError(err) {
			span.RecordError(err)
			return Hop{}, err
		}
		return Hop{}, wrapError(ctx, err, "failed to open ICMP listener")
	}
	defer func() { _ = listener.Close() }()

	sender, err := c.dialUDP(ctx, addr, opts.Port, ttl)
	if err != nil {
		return Hop{}, wrapError(ctx, err, "failed to open UDP socket with ttl %d", ttl)
	}
	defer func() { _ = sender.Close() }()

	readCtx, cancel := c.clock.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err = sender.Send(); err != nil {
		return Hop{}, wrapError(ctx, err, "failed to send probe")
	}
	start := c.clock.Now()
	resp, err := listener.Read(readCtx, probe{srcPort: sender.LocalPort(), dstPort: opts.Port})
	elapsed := c.clock.Since(start)
	if err != nil {
		return Hop{}, wrapError(ctx, err, "failed to read ICMP message")
	}

	var hop Hop
	switch resp.outcome {
	case outcomeTimeExceeded:
		hop = Hop{
			Step:      ttl,
			Name:      resolveName(ctx, c.resolver, resp.from),
			Address:   resp.from,
			ElapsedMS: millis(elapsed),
		}
	case outcomeUnreachable:
		hop = Hop{
			Step:      ttl,
			Name:      host,
			Address:   resp.from,
			ElapsedMS: millis(elapsed),
			Reached:   true,
		}
	case outcomeUnclassified:
		log.DebugContext(ctx, "Received unclassified ICMP message, recording miss",
			"type", resp.icmpType,
			"code", resp.code,
			"routerAddr", resp.from,
		)
		hop = newMissHop(ttl, opts.Timeout)
	default:
		hop = newMissHop(ttl, opts.Timeout)
		log.DebugContext(ctx, "ICMP read timeout exceeded, no response received")
		span.AddEvent("ICMP read timeout exceeded", trace.WithAttributes(
			attribute.Stringer("traceroute.target.hop", hop),
		))
		return hop, nil
	}

	span.AddEvent("ICMP message received", trace.WithAttributes(
		attribute.Bool("traceroute.target.reached", hop.Reached),
		attribute.Stringer("traceroute.target.hop", hop),
		attribute.Stringer("traceroute.icmp.outcome", resp.outcome),
	))
	return hop, nil
}

// notify passes the hop to all observers in registration order.
func (c *client) notify(ctx context.Context, hop Hop) {
	for _, o := range c.observers {
		o.OnHop(ctx, hop)
	}
}
