// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/telekom/hoptrace/internal/logger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	// mtuSize is the size of the receive buffer, large enough for any ICMP error.
	mtuSize = 1500
	// protocolICMP is the IANA protocol number of ICMP for IPv4.
	protocolICMP = 1
	// protocolICMPv6 is the IANA protocol number of ICMP for IPv6.
	protocolICMPv6 = 58
)

var _ icmpListener = (*rawListener)(nil)

// rawListener is a listener for ICMP messages over a raw socket.
// It requires root or NET_RAW capabilities to be created successfully.
type rawListener struct {
	// conn is the ICMP packet connection used to listen for ICMP messages.
	conn *icmp.PacketConn
	// proto is the protocol number passed to [icmp.ParseMessage].
	proto int
	// quoted is the layer type of the datagram quoted in ICMP errors.
	quoted gopacket.LayerType
}

// newRawListener opens a raw ICMP socket for the address family of the target.
// A denied socket creation is reported as [PrivilegeError].
func newRawListener(v6 bool) (icmpListener, error) {
	network, address := "ip4:icmp", "0.0.0.0"
	l := &rawListener{proto: protocolICMP, quoted: layers.LayerTypeIPv4}
	if v6 {
		network, address = "ip6:ipv6-icmp", "::"
		l.proto, l.quoted = protocolICMPv6, layers.LayerTypeIPv6
	}

	conn, err := icmp.ListenPacket(network, address)
	if err != nil {
		if isPermissionError(err) {
			return nil, &PrivilegeError{Err: err}
		}
		return nil, fmt.Errorf("failed to create ICMP listener: %w", err)
	}
	l.conn = conn
	return l, nil
}

// Read receives ICMP messages until one quotes the given probe or the
// context's deadline passes. Messages about other datagrams are skipped.
func (l *rawListener) Read(ctx context.Context, p probe) (response, error) {
	log := logger.FromContext(ctx)

	deadline, ok := ctx.Deadline()
	if !ok {
		return response{}, errors.New("no deadline set for ICMP read")
	}
	if err := l.conn.SetReadDeadline(deadline); err != nil {
		return response{}, fmt.Errorf("failed to set read deadline: %w", err)
	}

	// Unblock the pending read as soon as the context is canceled.
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	buf := make([]byte, mtuSize)
	for {
		n, src, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if errors.Is(ctx.Err(), context.Canceled) {
					return response{}, ctx.Err()
				}
				return timedOut, nil
			}
			return response{}, fmt.Errorf("failed to read from ICMP socket: %w", err)
		}

		resp, ok := l.match(ctx, src, buf[:n], p)
		if !ok {
			continue
		}
		log.DebugContext(ctx, "Received ICMP message",
			"outcome", resp.outcome,
			"type", resp.icmpType,
			"code", resp.code,
			"routerAddr", resp.from,
		)
		return resp, nil
	}
}

// match parses a received ICMP message and classifies it if it quotes the probe.
func (l *rawListener) match(ctx context.Context, src net.Addr, b []byte, p probe) (response, bool) {
	log := logger.FromContext(ctx)

	msg, err := icmp.ParseMessage(l.proto, b)
	if err != nil {
		log.DebugContext(ctx, "Failed to parse ICMP message, ignoring", "error", err)
		return response{}, false
	}

	resp := response{
		outcome:  outcomeUnclassified,
		from:     addrString(src),
		icmpType: icmpTypeNumber(msg.Type),
		code:     msg.Code,
	}

	var quoted []byte
	switch body := msg.Body.(type) {
	case *icmp.TimeExceeded:
		resp.outcome, quoted = outcomeTimeExceeded, body.Data
	case *icmp.DstUnreach:
		resp.outcome, quoted = outcomeUnreachable, body.Data
	case *icmp.ParamProb:
		quoted = body.Data
	case *icmp.PacketTooBig:
		quoted = body.Data
	default:
		// Echo replies and other informational messages never quote a probe.
		return response{}, false
	}

	srcPort, dstPort, ok := quotedPorts(quoted, l.quoted)
	if !ok || srcPort != p.srcPort || dstPort != p.dstPort {
		log.DebugContext(ctx, "Received ICMP message for another datagram, ignoring",
			"expectedPorts", []int{p.srcPort, p.dstPort},
			"receivedPorts", []int{srcPort, dstPort},
		)
		return response{}, false
	}
	return resp, true
}

// quotedPorts decodes the IP and UDP headers quoted in an ICMP error
// and returns the UDP source and destination ports.
func quotedPorts(data []byte, first gopacket.LayerType) (src, dst int, ok bool) {
	pkt := gopacket.NewPacket(data, first, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	udp, isUDP := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !isUDP {
		return 0, 0, false
	}
	return int(udp.SrcPort), int(udp.DstPort), true
}

// icmpTypeNumber returns the numeric value of an ICMP message type.
func icmpTypeNumber(t icmp.Type) int {
	switch v := t.(type) {
	case ipv4.ICMPType:
		return int(v)
	case ipv6.ICMPType:
		return int(v)
	default:
		return -1
	}
}

// addrString returns the IP of the address without port or zone decoration.
func addrString(addr net.Addr) string {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.String()
	case *net.UDPAddr:
		return a.IP.String()
	case nil:
		return ""
	default:
		return a.String()
	}
}

// Close closes the ICMP listener connection.
func (l *rawListener) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}
