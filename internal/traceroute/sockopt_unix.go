// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package traceroute

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setHopLimit sets the IPv4 TTL or the IPv6 unicast hop limit of the socket.
func setHopLimit(c syscall.RawConn, ttl int, v6 bool) error {
	var opErr error
	if err := c.Control(func(fd uintptr) {
		if v6 {
			opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, ttl) // #nosec G115
			return
		}
		opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl) // #nosec G115
	}); err != nil {
		return err
	}
	return opErr
}
