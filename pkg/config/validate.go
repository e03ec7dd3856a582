// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"

	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/internal/traceroute"
)

var dnsName = regexp.MustCompile(`^([a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?\.)*[a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?$`)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if c.Name != "" && !isDNSName(c.Name) {
		log.ErrorContext(ctx, "The name of the instance must be DNS compliant", "name", c.Name)
		err = errors.Join(err, ErrInvalidName)
	}

	if vErr := c.Trace.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The trace options are invalid", "error", vErr)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidTraceOptions, vErr))
	}

	if vErr := c.Resolver.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The resolver configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Monitor.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The monitor configuration is invalid", "error", vErr)
		err = errors.Join(err, vErr)
	}

	if c.HasLoader() {
		if vErr := c.Loader.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The loader configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if vErr := c.Api.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The api configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the resolver configuration
func (c *ResolverConfig) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if c.Nameserver != "" {
		host := c.Nameserver
		if h, _, sErr := net.SplitHostPort(c.Nameserver); sErr == nil {
			host = h
		}
		if vErr := traceroute.ValidateHost(host); vErr != nil {
			log.ErrorContext(ctx, "The nameserver must be a host or host:port", "nameserver", c.Nameserver)
			err = errors.Join(err, ErrInvalidNameserver)
		}
	}
	if c.Timeout < 0 {
		log.ErrorContext(ctx, "The resolver timeout should be equal or above 0", "timeout", c.Timeout)
		err = errors.Join(err, ErrInvalidResolverTimeout)
	}
	if c.CacheSize < 0 {
		log.ErrorContext(ctx, "The resolver cache size should be equal or above 0", "cacheSize", c.CacheSize)
		err = errors.Join(err, ErrInvalidCacheSize)
	}
	return err
}

// Validate validates the loader configuration
func (c *LoaderConfig) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if c.Interval < 0 {
		log.ErrorContext(ctx, "The loader interval should be equal or above 0", "interval", c.Interval)
		return ErrInvalidLoaderInterval
	}

	switch c.Type {
	case LoaderTypeHttp:
		if _, err := url.ParseRequestURI(c.Http.Url); err != nil {
			log.ErrorContext(ctx, "The loader http url is not a valid url")
			return ErrInvalidLoaderHttpURL
		}
		if c.Http.RetryCfg.Count < 0 || c.Http.RetryCfg.Count >= 5 {
			log.ErrorContext(ctx, "The amount of loader http retries should be above 0 and below 6", "retryCount", c.Http.RetryCfg.Count)
			return ErrInvalidLoaderHttpRetryCount
		}
	case LoaderTypeFile:
		if c.File.Path == "" {
			log.ErrorContext(ctx, "The loader file path cannot be empty")
			return ErrInvalidLoaderFilePath
		}
	default:
		log.ErrorContext(ctx, "The loader type is unknown", "type", c.Type)
		return ErrInvalidLoaderType
	}

	return nil
}

// isDNSName checks if the given string is a valid DNS name
func isDNSName(s string) bool {
	return dnsName.MatchString(s)
}
