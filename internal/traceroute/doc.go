// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package traceroute discovers the routers between the local machine and a
// destination by sending UDP datagrams with increasing TTL values and
// listening for the ICMP time-exceeded and destination-unreachable messages
// they trigger.
//
// It exposes a [Client] whose Discover method resolves the destination with
// a [Resolver], rejects incompatible platforms through a [Gate], checks raw
// socket privileges once and then probes one TTL at a time. Each hop opens
// its own raw ICMP listener and UDP socket and closes both before the next
// hop starts, so the returned [Route] is always ordered by step without gaps.
//
// Key features:
//   - Raw ICMP listener matching answers to probes by the quoted UDP ports
//   - TTL and IPv6 hop limit control via x/sys/unix, no external binary
//   - Resolvers backed by the system, a single nameserver or an LRU cache
//   - [Observer] callbacks for progress reporting while the discovery runs
//   - OpenTelemetry spans per discovery and per hop
//   - Mockable internals (icmpListener, udpSender, [Resolver], [Client])
//
// Typical usage:
//
//	client := traceroute.NewClient(traceroute.WithObservers(printer))
//	route, err := client.Discover(ctx, "example.com", traceroute.DefaultOptions())
//	if errors.Is(err, traceroute.ErrNotReached) {
//		// the hop budget was exhausted
//	}
package traceroute
