// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"time"

	"github.com/telekom/hoptrace/internal/traceroute"
)

// Result is the latest discovery outcome of one target.
type Result struct {
	// RunID identifies the monitor run that produced the result.
	RunID string `json:"runId" yaml:"runId"`
	// Target is the configured host.
	Target string `json:"target" yaml:"target"`
	// Address is the resolved address if the destination was reached.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// Reached is true if the destination answered within the hop budget.
	Reached bool `json:"reached" yaml:"reached"`
	// Hops are all hops observed during the last attempt, also when the
	// destination was not reached.
	Hops []traceroute.Hop `json:"hops" yaml:"hops"`
	// Error describes why the discovery failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Timestamp is the UTC time the discovery finished.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Outcome labels of the run counter.
const (
	outcomeReached    = "reached"
	outcomeNotReached = "not_reached"
	outcomeFailed     = "failed"
)

// outcomeOf maps the error of a discovery to its run counter label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeReached
	case errors.Is(err, traceroute.ErrNotReached):
		return outcomeNotReached
	default:
		return outcomeFailed
	}
}

// misses counts the hops that did not answer.
func (r Result) misses() int {
	n := 0
	for _, h := range r.Hops {
		if h.Missed() {
			n++
		}
	}
	return n
}
