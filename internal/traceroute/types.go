// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"time"
)

// MissMarker replaces the name and address of a hop that did not answer.
const MissMarker = "*"

// Default values of the discovery options.
const (
	DefaultMaxHops = 30
	DefaultPort    = 33434
	DefaultTimeout = 200 * time.Millisecond
)

// Options contains the tuning parameters of a discovery.
type Options struct {
	// MaxHops is the hop budget. The engine probes up to MaxHops+1 TTL values.
	MaxHops int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Port is the UDP destination port of the probes.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// Timeout is how long to wait for an ICMP answer per hop.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		MaxHops: DefaultMaxHops,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// Validate checks the preconditions of a discovery.
func (o Options) Validate() error {
	var err error
	if o.MaxHops < 1 {
		err = errors.Join(err, fmt.Errorf("invalid max hops: %d, must be at least 1", o.MaxHops))
	}
	if o.Port < 1 || o.Port > 65535 {
		err = errors.Join(err, fmt.Errorf("invalid port: %d, must be between 1 and 65535", o.Port))
	}
	if o.Timeout <= 0 {
		err = errors.Join(err, fmt.Errorf("invalid timeout: %v, must be greater than 0", o.Timeout))
	}
	return err
}

// Route is the result of a successful discovery.
type Route struct {
	// Target is the host identifier as given by the caller.
	Target string `json:"target" yaml:"target"`
	// Address is the resolved address of the target.
	Address string `json:"address" yaml:"address"`
	// Hops are ordered by step, starting at 1 without gaps.
	Hops []Hop `json:"hops" yaml:"hops"`
}

// Hop is the outcome of a single probe with a given TTL.
type Hop struct {
	// Step is the TTL used for the probe.
	Step int `json:"step" yaml:"step"`
	// Name is the reverse DNS name of the responder, its literal address
	// if the lookup failed, or [MissMarker].
	Name string `json:"name" yaml:"name"`
	// Address is the responder's address or [MissMarker].
	Address string `json:"address" yaml:"address"`
	// ElapsedMS is the round-trip time in whole milliseconds.
	ElapsedMS int64 `json:"elapsedMs" yaml:"elapsedMs"`
	// Reached is set on the hop answered by the destination.
	Reached bool `json:"reached" yaml:"reached"`
}

// newMissHop returns the hop recorded when no answer arrived in time.
func newMissHop(step int, timeout time.Duration) Hop {
	return Hop{
		Step:      step,
		Name:      MissMarker,
		Address:   MissMarker,
		ElapsedMS: millis(timeout.Round(time.Millisecond)),
	}
}

// Missed reports whether nobody answered the probe.
func (h Hop) Missed() bool {
	return h.Address == MissMarker
}

// String formats the hop as a progress line.
func (h Hop) String() string {
	if h.Missed() {
		return fmt.Sprintf("%d: %d ms %s", h.Step, h.ElapsedMS, MissMarker)
	}
	if h.Name == h.Address {
		return fmt.Sprintf("%d: %d ms %s", h.Step, h.ElapsedMS, h.Name)
	}
	return fmt.Sprintf("%d: %d ms %s [%s]", h.Step, h.ElapsedMS, h.Name, h.Address)
}

// millis converts a duration into whole milliseconds, truncating and never negative.
func millis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
