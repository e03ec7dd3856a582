// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg/monitor"
	"gopkg.in/yaml.v3"
)

//go:generate go tool moq -out loader_moq.go . Loader
type Loader interface {
	// Run starts the loader routine.
	// The loader should be able
	// to handle all errors by itself and retry if necessary.
	// If the context is canceled,
	// the Run method returns an error.
	Run(context.Context) error
	// Shutdown stops the loader routine.
	Shutdown(context.Context)
}

// NewLoader Get a new typed monitor configuration loader
func NewLoader(cfg *Config, cMonitor chan<- monitor.Config) Loader {
	switch cfg.Loader.Type {
	case LoaderTypeHttp:
		return NewHttpLoader(cfg, cMonitor)
	default:
		return NewFileLoader(cfg, cMonitor)
	}
}

// fetchFunc returns the raw monitor configuration document.
type fetchFunc func(ctx context.Context) ([]byte, error)

// reloader runs the load loop shared by all loaders.
type reloader struct {
	name     string
	config   LoaderConfig
	base     monitor.Config
	cMonitor chan<- monitor.Config
	done     chan struct{}
	clock    clock.Clock
	fetch    fetchFunc
}

// run gets the monitor configuration once and then periodically as defined
// by the loader interval. If the interval is 0, the configuration is only
// fetched once and the loader is disabled.
func (r *reloader) run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx).With("loader", r.name)

	var err error
	if err = r.load(ctx); err != nil {
		log.WarnContext(ctx, "Could not get monitor configuration", "error", err)
		err = fmt.Errorf("could not get monitor configuration: %w", err)
	}

	if r.config.Interval == 0 {
		log.InfoContext(ctx, "Loader disabled")
		return err
	}

	tick := r.clock.Ticker(r.config.Interval)
	defer tick.Stop()

	for {
		select {
		case <-r.done:
			log.InfoContext(ctx, "Loader terminated")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if err := r.load(ctx); err != nil {
				log.WarnContext(ctx, "Could not get monitor configuration", "error", err)
				continue
			}
			log.InfoContext(ctx, "Successfully got monitor configuration")
		}
	}
}

// load fetches, decodes and validates the configuration and hands it over.
// Fields missing in the document keep the values of the startup configuration.
func (r *reloader) load(ctx context.Context) error {
	b, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	cfg := r.base
	cfg.Targets = nil
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to parse monitor configuration", "error", err)
		return fmt.Errorf("failed to parse monitor configuration: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid monitor configuration: %w", err)
	}

	select {
	case r.cMonitor <- cfg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *reloader) shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case r.done <- struct{}{}:
		log.DebugContext(ctx, "Sending signal to shut down loader", "loader", r.name)
	default:
	}
}
