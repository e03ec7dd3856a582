// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

var _ Resolver = (*nameserverResolver)(nil)

// defaultDNSPort is appended to nameservers given without a port.
const defaultDNSPort = "53"

// nameserverResolver sends all lookups to a single nameserver
// instead of going through the system's resolver configuration.
type nameserverResolver struct {
	client *dns.Client
	server string
}

// NewNameserverResolver returns a [Resolver] querying the given nameserver.
// The server may be given with or without a port.
func NewNameserverResolver(server string, timeout time.Duration) Resolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, defaultDNSPort)
	}
	return &nameserverResolver{
		client: &dns.Client{Net: "udp", Timeout: timeout},
		server: server,
	}
}

// LookupHost queries A and AAAA records of the host, IPv4 addresses first.
func (r *nameserverResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	fqdn := dns.Fqdn(host)

	var addrs []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		in, err := r.exchange(ctx, fqdn, qtype)
		if err != nil {
			return nil, err
		}
		for _, rr := range in.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				addrs = append(addrs, rec.A.String())
			case *dns.AAAA:
				addrs = append(addrs, rec.AAAA.String())
			}
		}
	}

	if len(addrs) == 0 {
		return nil, r.notFound(host)
	}
	return addrs, nil
}

// LookupAddr queries the PTR records of the address.
func (r *nameserverResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	arpa, err := dns.ReverseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	in, err := r.exchange(ctx, arpa, dns.TypePTR)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, rr := range in.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	if len(names) == 0 {
		return nil, r.notFound(addr)
	}
	return names, nil
}

// exchange sends a single recursive query to the nameserver.
func (r *nameserverResolver) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(name, qtype)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("failed to query nameserver %s: %w", r.server, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
		return in, nil
	case dns.RcodeNameError:
		return nil, r.notFound(name)
	default:
		return nil, fmt.Errorf("nameserver %s answered %s for %s", r.server, dns.RcodeToString[in.Rcode], name)
	}
}

func (r *nameserverResolver) notFound(name string) error {
	return &net.DNSError{
		Err:        "no such host",
		Name:       name,
		Server:     r.server,
		IsNotFound: true,
	}
}
