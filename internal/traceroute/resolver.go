// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

var (
	// errEmptyHost is returned when an empty host identifier is resolved.
	errEmptyHost = errors.New("empty host identifier")
	// errMalformedHost is returned for identifiers that are neither an address nor a domain name.
	errMalformedHost = errors.New("malformed host identifier")
	// errNoAddresses is returned when a lookup succeeds without yielding any address.
	errNoAddresses = errors.New("lookup returned no addresses")
)

// Resolver performs forward and reverse name lookups.
//
//go:generate go tool moq -out resolver_moq.go . Resolver
type Resolver interface {
	// LookupHost returns the addresses of the given host.
	LookupHost(ctx context.Context, host string) ([]string, error)
	// LookupAddr returns the names mapping to the given address.
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// NewSystemResolver returns a [Resolver] using the system's DNS configuration.
func NewSystemResolver() Resolver {
	return net.DefaultResolver
}

// Resolve maps a host identifier to a network address.
// Literal addresses are returned unchanged without any lookup. For domain
// names the first address returned by the resolver is used.
// All failures are reported as [ResolutionError].
func Resolve(ctx context.Context, r Resolver, host string) (string, error) {
	if err := ValidateHost(host); err != nil {
		return "", err
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return host, nil
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", &ResolutionError{Host: host, Err: err}
	}

	for _, a := range addrs {
		if _, err := netip.ParseAddr(a); err == nil {
			return a, nil
		}
	}
	return "", &ResolutionError{Host: host, Err: errNoAddresses}
}

// ValidateHost checks that the host is a literal address or a syntactically
// valid domain name without performing any lookup.
func ValidateHost(host string) error {
	if host == "" {
		return &ResolutionError{Host: host, Err: errEmptyHost}
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return nil
	}
	if isNumeric(host) {
		return &ResolutionError{Host: host, Err: errMalformedHost}
	}
	if _, ok := dns.IsDomainName(host); !ok {
		return &ResolutionError{Host: host, Err: errMalformedHost}
	}
	return nil
}

// isNumeric reports whether the host looks like a dotted numeric address.
// Such a host that failed to parse as an address has too many or
// out of range components and must not be sent to a name server.
func isNumeric(host string) bool {
	return strings.Trim(host, "0123456789.") == "" && strings.ContainsAny(host, "0123456789")
}
