// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/telekom/hoptrace/internal/helper"
	"github.com/telekom/hoptrace/internal/traceroute"
)

// DefaultRetry provides a default configuration for the retry mechanism
var DefaultRetry = helper.RetryConfig{
	Count: 3,
	Delay: time.Second,
}

// DefaultInterval is the time between two monitor runs if none is configured.
const DefaultInterval = 5 * time.Minute

// Config is the configuration of the route monitor
type Config struct {
	// Targets are the hosts whose routes are discovered on every run.
	Targets []string `json:"targets" yaml:"targets" mapstructure:"targets"`
	// Interval is the time between two runs.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// Concurrency limits the number of parallel discoveries. 0 means no limit.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	// Retry configures how transient discovery failures are retried.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	// Options are the discovery options used for every target.
	traceroute.Options `json:",inline" yaml:",inline" mapstructure:",squash"`
}

// DefaultConfig returns a monitor configuration without targets.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Retry:    DefaultRetry,
		Options:  traceroute.DefaultOptions(),
	}
}

// Validate checks the configuration and joins all field errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, ErrInvalidConfig{Field: "monitor.interval", Reason: "must be greater than 0"})
	}
	if c.Concurrency < 0 {
		errs = append(errs, ErrInvalidConfig{Field: "monitor.concurrency", Reason: "must not be negative"})
	}
	if c.Retry.Count < 0 || c.Retry.Delay < 0 {
		errs = append(errs, ErrInvalidConfig{Field: "monitor.retry", Reason: "count and delay must not be negative"})
	}
	if oErr := c.Options.Validate(); oErr != nil {
		errs = append(errs, ErrInvalidConfig{Field: "monitor.options", Reason: oErr.Error()})
	}

	for i, t := range c.Targets {
		if tErr := traceroute.ValidateHost(t); tErr != nil {
			errs = append(errs, ErrInvalidConfig{Field: fmt.Sprintf("monitor.targets[%d]", i), Reason: "invalid host or ip"})
			continue
		}
		if slices.Index(c.Targets, t) != i {
			errs = append(errs, ErrInvalidConfig{Field: fmt.Sprintf("monitor.targets[%d]", i), Reason: fmt.Sprintf("duplicate target %q", t)})
		}
	}
	return errors.Join(errs...)
}
