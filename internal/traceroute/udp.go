// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"syscall"
)

// udpSender sends the UDP probes of a single hop.
//
//go:generate go tool moq -out udp_moq.go . udpSender
type udpSender interface {
	// Send transmits a zero-length datagram to the target.
	Send() error
	// LocalPort is the source port quoted back in ICMP errors.
	LocalPort() int
	Close() error
}

var _ udpSender = (*udpConn)(nil)

// udpConn is a connected UDP socket with a fixed outbound TTL.
type udpConn struct {
	conn net.Conn
	port int
}

// dialUDP sets up a UDP socket to the target with the TTL of the hop.
// The kernel picks the local port.
func dialUDP(ctx context.Context, addr netip.Addr, port, ttl int) (udpSender, error) {
	network := "udp4"
	v6 := is6(addr)
	if v6 {
		network = "udp6"
	}

	dialer := net.Dialer{
		ControlContext: func(_ context.Context, _, _ string, c syscall.RawConn) error {
			return setHopLimit(c, ttl, v6)
		},
	}

	conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(addr.String(), strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP connection: %w", err)
	}

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}
	return &udpConn{conn: conn, port: local.Port}, nil
}

func (u *udpConn) Send() error {
	if _, err := u.conn.Write(nil); err != nil {
		return fmt.Errorf("failed sending UDP probe: %w", err)
	}
	return nil
}

func (u *udpConn) LocalPort() int {
	return u.port
}

func (u *udpConn) Close() error {
	return u.conn.Close()
}

// is6 reports whether the address needs an IPv6 socket.
func is6(addr netip.Addr) bool {
	return addr.Is6() && !addr.Is4In6()
}
