// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/telekom/hoptrace/pkg/agent"
	"github.com/telekom/hoptrace/pkg/config"
	"github.com/telekom/hoptrace/pkg/monitor"
	"gopkg.in/yaml.v3"
)

// E2E is an end-to-end test of a running agent.
type E2E struct {
	config config.Config
	t      *testing.T
	agent  *agent.Agent
	opts   []monitor.Option

	mu  sync.Mutex
	buf bytes.Buffer

	server   *http.Server
	listener net.Listener

	running int32
}

// New creates an end-to-end test for the given startup configuration.
// The monitor configuration is reloaded from a file in a temporary directory.
func New(t *testing.T, cfg config.Config, opts ...monitor.Option) *E2E {
	cfg.Loader = config.LoaderConfig{
		Type:     config.LoaderTypeFile,
		Interval: cfg.Loader.Interval,
		File:     config.FileLoaderConfig{Path: filepath.Join(t.TempDir(), "monitor.yaml")},
	}
	return &E2E{config: cfg, t: t, opts: opts}
}

// WithTargets sets the monitored targets of the test.
func (e *E2E) WithTargets(targets ...string) *E2E {
	e.t.Helper()
	mc := e.config.Monitor
	mc.Targets = targets

	b, err := yaml.Marshal(mc)
	if err != nil {
		e.t.Fatalf("Failed to marshal monitor config: %v", err)
	}

	e.mu.Lock()
	e.buf.Reset()
	e.buf.Write(b)
	e.mu.Unlock()

	// Write the config to file only if no remote server is used.
	if e.server == nil && e.isRunning() {
		if err = e.writeMonitorConfig(); err != nil {
			e.t.Fatalf("Failed to write monitor config: %v", err)
		}
	}
	return e
}

// Run starts the test. If a remote server is configured it runs it in a goroutine.
func (e *E2E) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}

	if e.server != nil {
		go func() {
			if err := e.server.Serve(e.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.t.Errorf("Failed to start server: %v", err)
			}
		}()
		defer func() {
			if err := e.server.Shutdown(context.WithoutCancel(ctx)); err != nil {
				e.t.Errorf("Failed to shutdown server: %v", err)
			}
		}()
	} else {
		if err := e.writeMonitorConfig(); err != nil {
			e.t.Fatalf("Failed to write monitor config: %v", err)
		}
	}

	a, err := agent.New(&e.config, e.opts...)
	if err != nil {
		return err
	}
	e.agent = a
	return a.Run(ctx)
}

// AwaitStartup waits for the provided URL to be ready.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	e.t.Helper()
	const backoff = 100 * time.Millisecond

	// Initial delay to allow the server to start.
	<-time.After(backoff)
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitStartup must be called after E2E.Run")
	}

	deadline := time.Now().Add(failureTimeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
		if err != nil {
			e.t.Fatalf("Failed to create request: %v", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return e
			}
		}

		<-time.After(backoff)
	}

	e.t.Fatalf("%s did not become ready within %v", u, failureTimeout)
	return e
}

// AwaitLoader waits for the loader to reload the configuration.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitLoader() *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitLoader must be called after E2E.Run")
	}

	e.t.Logf("Waiting %s for loader to reload configuration", e.config.Loader.Interval.String())
	<-time.After(e.config.Loader.Interval)
	return e
}

// AwaitRuns waits for the given number of monitor runs.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitRuns(n int) *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitRuns must be called after E2E.Run")
	}

	wait := time.Duration(n) * e.config.Monitor.Interval
	e.t.Logf("Waiting %s for %d monitor runs", wait.String(), n)
	<-time.After(wait)
	return e
}

// writeMonitorConfig writes the monitor config to the loader file.
func (e *E2E) writeMonitorConfig() error {
	const fileMode = 0o600
	e.mu.Lock()
	defer e.mu.Unlock()

	path := e.config.Loader.File.Path
	if err := os.WriteFile(path, e.buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

// WithRemote serves the monitor config via HTTP and lets the agent use the http loader.
// The listener is bound immediately so the first fetch never races the server startup.
func (e *E2E) WithRemote() *E2E {
	e.t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		e.t.Fatalf("Failed to reserve a port: %v", err)
	}
	addr := l.Addr().String()

	e.listener = l
	e.server = &http.Server{
		Handler:           http.HandlerFunc(e.serveConfig),
		ReadHeaderTimeout: 3 * time.Second,
	}
	e.config.Loader.Type = config.LoaderTypeHttp
	e.config.Loader.Http = config.HttpLoaderConfig{
		Url:     "http://" + addr + "/monitor.yaml",
		Timeout:  time.Second,
		RetryCfg: monitor.DefaultRetry,
	}
	return e
}

// serveConfig serves the monitor config over HTTP as text/yaml.
func (e *E2E) serveConfig(w http.ResponseWriter, _ *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(e.buf.Bytes()); err != nil {
		e.t.Errorf("Failed to write response: %v", err)
	}
}
