// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/telekom/hoptrace/internal/traceroute"
)

var _ traceroute.Observer = (*ProgressPrinter)(nil)

// ProgressPrinter writes a human readable line for every hop of a discovery.
type ProgressPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewProgressPrinter returns a [ProgressPrinter] writing to w.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{w: w}
}

// Start announces a discovery towards the resolved address.
func (p *ProgressPrinter) Start(address string, maxHops int) {
	p.println(fmt.Sprintf("Traceroute to host %s with a maximum of %d hops", address, maxHops))
}

// OnHop prints the hop as soon as it is recorded.
func (p *ProgressPrinter) OnHop(_ context.Context, hop traceroute.Hop) {
	p.println(hop.String())
}

// Finish prints the summary of a discovery.
// Errors other than [traceroute.ErrNotReached] are left to the caller.
func (p *ProgressPrinter) Finish(host string, err error) {
	switch {
	case err == nil:
		p.println("Traceroute complete.")
	case errors.Is(err, traceroute.ErrNotReached):
		p.println(fmt.Sprintf("Traceroute to host %s failed. TTL exceeded.", host))
	}
}

func (p *ProgressPrinter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, line)
}
