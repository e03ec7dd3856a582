// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/hoptrace/internal/logger"
)

const (
	// DefaultAddress is used when no listening address is configured.
	DefaultAddress    = ":8080"
	readHeaderTimeout = 5 * time.Second
)

var _ API = (*api)(nil)

// API serves the HTTP endpoints of the monitor.
type API interface {
	// Run serves the registered routes until Shutdown is called.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds routes to the router. Must be called before Run.
	RegisterRoutes(ctx context.Context, routes ...Route) error
	// Handler returns the router serving the registered routes.
	Handler() http.Handler
}

// Config is the configuration of the HTTP server.
type Config struct {
	ListeningAddress string `json:"address" yaml:"address" mapstructure:"address"`
}

// Validate checks that the listening address is a host:port pair.
func (c *Config) Validate() error {
	if c.ListeningAddress == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListeningAddress); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidAddress, c.ListeningAddress, err)
	}
	return nil
}

// Route is a single HTTP endpoint.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

type api struct {
	server *http.Server
	router chi.Router
}

// New creates a new API listening on the configured address.
func New(cfg Config) API {
	addr := cfg.ListeningAddress
	if addr == "" {
		addr = DefaultAddress
	}
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
	}
}

// Run serves the API until it is shut down.
// Returns nil if the server was stopped through Shutdown.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	a.server.BaseContext = func(net.Listener) context.Context { return ctx }

	log.InfoContext(ctx, "Serving API", "address", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Failed to serve API", "error", err)
		return fmt.Errorf("failed serving API: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (a *api) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown API server", "error", err)
		return fmt.Errorf("failed shutting down API: %w", err)
	}
	return nil
}

// RegisterRoutes mounts the routes behind the logger and recoverer middlewares.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	for _, rt := range routes {
		if rt.Path == "" || rt.Method == "" || rt.Handler == nil {
			return fmt.Errorf("%w: %s %s", ErrInvalidRoute, rt.Method, rt.Path)
		}
	}

	a.router.Group(func(r chi.Router) {
		r.Use(logger.Middleware(ctx), middleware.Recoverer)
		for _, rt := range routes {
			r.Method(rt.Method, rt.Path, rt.Handler)
		}
	})
	return nil
}

func (a *api) Handler() http.Handler {
	return a.router
}
