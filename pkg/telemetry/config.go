// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/telekom/hoptrace/internal/logger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrInvalidSampleRatio is returned for a sample ratio outside of [0, 1]
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
	// ErrInvalidCollectorURL is returned when an exporting backend has no usable url
	ErrInvalidCollectorURL = errors.New("collector url must be an absolute http(s) url")
)

// Config configures the export of the monitor run, discovery and hop spans.
type Config struct {
	Enabled  bool     `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Exporter Exporter `json:"exporter" yaml:"exporter" mapstructure:"exporter"`
	// Url of the OTLP collector, required for the http and grpc exporters.
	Url   string `json:"url" yaml:"url" mapstructure:"url"`
	Token string `json:"token" yaml:"token" mapstructure:"token"`
	// SampleRatio is the share of monitor runs whose spans are kept.
	// Hop spans follow the decision of their run. 0 keeps every run.
	SampleRatio float64   `json:"sampleRatio" yaml:"sampleRatio" mapstructure:"sampleRatio"`
	TLS         TLSConfig `json:"tls" yaml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// CertPath is an additional CA certificate, only needed for private collectors.
	CertPath string `json:"certPath" yaml:"certPath" mapstructure:"certPath"`
}

func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if err := c.Exporter.Validate(); err != nil {
		log.ErrorContext(ctx, "Invalid exporter", "error", err)
		return err
	}

	if c.Exporter.IsExporting() {
		u, err := url.Parse(c.Url)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			log.ErrorContext(ctx, "Invalid collector url", "exporter", c.Exporter, "url", c.Url)
			return fmt.Errorf("%w: exporter %q, url %q", ErrInvalidCollectorURL, c.Exporter, c.Url)
		}
	}

	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		log.ErrorContext(ctx, "Invalid sample ratio", "sampleRatio", c.SampleRatio)
		return ErrInvalidSampleRatio
	}
	return nil
}

// sampler samples whole monitor runs, the child spans inherit the decision.
func (c *Config) sampler() sdktrace.Sampler {
	if c.SampleRatio == 0 || c.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}
