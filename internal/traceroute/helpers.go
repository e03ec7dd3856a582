// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/telekom/hoptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// resolveName performs a reverse DNS lookup for the given address.
// If the lookup fails or returns no names, it returns the address itself.
func resolveName(ctx context.Context, r Resolver, addr string) string {
	names, err := r.LookupAddr(ctx, addr)
	if err != nil || len(names) == 0 {
		logger.FromContext(ctx).DebugContext(ctx, "Reverse lookup failed, using address as name",
			"address", addr,
			"error", err,
		)
		return addr
	}
	name := strings.TrimSuffix(names[0], ".")
	if name == "" {
		return addr
	}
	return name
}

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)

	msg = fmt.Sprintf(msg, args...)
	log.ErrorContext(ctx, caser.String(msg), "error", err)
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", msg, err)
}

// recordError records a fatal discovery error in the current span and
// returns it unchanged, so typed errors reach the caller unwrapped.
func recordError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, ErrNotReached) {
		span.AddEvent("Hop budget exhausted", trace.WithAttributes(
			attribute.Bool("traceroute.target.reached", false),
		))
		log.WarnContext(ctx, "Destination not reached within hop budget")
		return err
	}
	log.ErrorContext(ctx, "Discovery failed", "error", err)
	return err
}
