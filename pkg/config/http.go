// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/telekom/hoptrace/internal/helper"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg/monitor"
)

var _ Loader = (*HttpLoader)(nil)

// HttpLoader fetches the monitor configuration from a remote endpoint.
type HttpLoader struct {
	reloader
	http   HttpLoaderConfig
	client *http.Client
}

func NewHttpLoader(cfg *Config, cMonitor chan<- monitor.Config) *HttpLoader {
	h := &HttpLoader{
		reloader: reloader{
			name:     LoaderTypeHttp,
			config:   cfg.Loader,
			base:     cfg.Monitor,
			cMonitor: cMonitor,
			done:     make(chan struct{}, 1),
			clock:    clock.New(),
		},
		http: cfg.Loader.Http,
		client: &http.Client{
			Timeout: cfg.Loader.Http.Timeout,
		},
	}
	h.fetch = h.download
	return h
}

// Run gets the monitor configuration from the remote endpoint.
func (h *HttpLoader) Run(ctx context.Context) error {
	return h.run(ctx)
}

// download requests the configuration, retrying failed requests.
func (h *HttpLoader) download(ctx context.Context) ([]byte, error) {
	var body []byte
	getConfig := func(ctx context.Context) (err error) {
		body, err = h.get(ctx)
		return err
	}
	if err := helper.Retry(getConfig, h.http.RetryCfg)(ctx); err != nil {
		return nil, err
	}
	return body, nil
}

func (h *HttpLoader) get(ctx context.Context) (body []byte, err error) {
	log := logger.FromContext(ctx).With("url", h.http.Url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.http.Url, http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Could not create http GET request", "error", err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if h.http.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.http.Token)
	}

	res, err := h.client.Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		log.ErrorContext(ctx, "Http get request failed", "error", err)
		return nil, fmt.Errorf("failed to request monitor configuration: %w", err)
	}
	defer func() {
		if cErr := res.Body.Close(); cErr != nil {
			log.ErrorContext(ctx, "Failed to close response body", "error", cErr)
		}
	}()

	if res.StatusCode != http.StatusOK {
		log.ErrorContext(ctx, "Http get request failed", "status", res.Status)
		return nil, fmt.Errorf("request failed, status is %s", res.Status)
	}

	body, err = io.ReadAll(res.Body)
	if err != nil {
		log.ErrorContext(ctx, "Could not read response body", "error", err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (h *HttpLoader) Shutdown(ctx context.Context) {
	h.shutdown(ctx)
}
