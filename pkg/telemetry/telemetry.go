// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var _ Provider = (*manager)(nil)

// serviceName identifies hoptrace in exported traces.
const serviceName = "hoptrace"

// Provider owns the metrics registry and the tracer provider of a hoptrace agent.
//
//go:generate go tool moq -out telemetry_moq.go . Provider
type Provider interface {
	// GetRegistry returns the registry served on the metrics endpoint.
	GetRegistry() *prometheus.Registry
	// RegisterMetrics registers the route collectors of the monitor and
	// the instance info metric of the named instance.
	RegisterMetrics(instance string, routeCollectors ...prometheus.Collector) error
	// TracerProvider returns the provider of the discovery and hop spans.
	// Spans are recorded right away and exported once InitTracing succeeded.
	TracerProvider() trace.TracerProvider
	// InitTracing attaches the configured exporter to the tracer provider.
	InitTracing(ctx context.Context) error
	// Shutdown flushes pending spans and stops the tracer provider.
	Shutdown(ctx context.Context) error
}

type manager struct {
	config   Config
	registry *prometheus.Registry
	tp       *sdktrace.TracerProvider
}

// New creates the registry with the runtime collectors and a tracer provider
// without exporter.
//
//nolint:gocritic
func New(config Config) Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &manager{
		config:   config,
		registry: registry,
		tp: sdktrace.NewTracerProvider(
			sdktrace.WithSampler(config.sampler()),
			sdktrace.WithResource(newResource()),
		),
	}
}

// newResource describes this hoptrace process.
func newResource() *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(version()),
	}
	if host, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.HostNameKey.String(host))
	}

	own := resource.NewSchemaless(attrs...)
	res, err := resource.Merge(resource.Default(), own)
	if err != nil {
		return own
	}
	return res
}

func (m *manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *manager) RegisterMetrics(instance string, routeCollectors ...prometheus.Collector) error {
	for _, c := range routeCollectors {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("failed to register route metrics: %w", err)
		}
	}
	if err := RegisterInstanceInfo(m.registry, instance); err != nil {
		return fmt.Errorf("failed to register instance info: %w", err)
	}
	return nil
}

func (m *manager) TracerProvider() trace.TracerProvider {
	return m.tp
}

func (m *manager) InitTracing(ctx context.Context) error {
	log := logger.FromContext(ctx)

	exporter, err := m.config.Exporter.Create(ctx, &m.config)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create exporter", "error", err)
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	// One discovery yields a span per hop, so batches are sized for a few
	// full routes of the default hop budget.
	const (
		batchTimeout = 5 * time.Second
		maxQueueSize = 2048
		maxBatchSize = 256
	)
	m.tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter,
		sdktrace.WithBatchTimeout(batchTimeout),
		sdktrace.WithMaxQueueSize(maxQueueSize),
		sdktrace.WithMaxExportBatchSize(maxBatchSize),
	))
	otel.SetTracerProvider(m.tp)
	log.DebugContext(ctx, "Tracing initialized", "exporter", m.config.Exporter)
	return nil
}

func (m *manager) Shutdown(ctx context.Context) error {
	if err := m.tp.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

func version() string {
	if pkg.Version == "" {
		return "dev"
	}
	return pkg.Version
}
