// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
)

// icmpListener is an interface for reading ICMP messages answering a probe.
//
//go:generate go tool moq -out icmp_moq.go . icmpListener
type icmpListener interface {
	// Read blocks until an ICMP message quoting the probe arrives or the
	// context's deadline passes. A passed deadline is not an error but
	// an [outcomeTimedOut] response.
	Read(ctx context.Context, p probe) (response, error)
	Close() error
}

// probe identifies a sent UDP datagram inside the quoted header of an ICMP error.
type probe struct {
	// srcPort is the local port of the sending socket.
	srcPort int
	// dstPort is the destination port of the datagram.
	dstPort int
}

// outcome is the classification of a bounded ICMP read.
type outcome int

const (
	// outcomeTimedOut means no matching message arrived in time.
	outcomeTimedOut outcome = iota
	// outcomeTimeExceeded means an intermediate router discarded the probe.
	outcomeTimeExceeded
	// outcomeUnreachable means the destination answered, the probe arrived.
	outcomeUnreachable
	// outcomeUnclassified is any other ICMP error quoting the probe.
	outcomeUnclassified
)

func (o outcome) String() string {
	switch o {
	case outcomeTimedOut:
		return "timed out"
	case outcomeTimeExceeded:
		return "time exceeded"
	case outcomeUnreachable:
		return "destination unreachable"
	case outcomeUnclassified:
		return "unclassified"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// response is the result of a bounded ICMP read.
type response struct {
	outcome outcome
	// from is the address of the node that sent the ICMP message.
	// It is empty for [outcomeTimedOut].
	from string
	// icmpType and code are the raw ICMP header values.
	icmpType int
	code     int
}

// timedOut is the response of a read whose deadline passed.
var timedOut = response{outcome: outcomeTimedOut}
