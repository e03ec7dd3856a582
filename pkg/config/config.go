// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/telekom/hoptrace/internal/helper"
	"github.com/telekom/hoptrace/internal/traceroute"
	"github.com/telekom/hoptrace/pkg/api"
	"github.com/telekom/hoptrace/pkg/monitor"
	"github.com/telekom/hoptrace/pkg/telemetry"
)

// Loader types
const (
	LoaderTypeFile = "file"
	LoaderTypeHttp = "http"
)

type Config struct {
	// Name identifies the instance in the hoptrace_instance_info metric
	Name string `yaml:"name" mapstructure:"name"`
	// Trace holds the discovery options of the trace command
	Trace traceroute.Options `yaml:"trace" mapstructure:"trace"`
	// Resolver configures forward and reverse lookups
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	// Monitor is the startup configuration of the route monitor
	Monitor monitor.Config `yaml:"monitor" mapstructure:"monitor"`
	// Loader reloads the monitor configuration at runtime
	Loader LoaderConfig `yaml:"loader" mapstructure:"loader"`
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Telemetry is the configuration for the telemetry
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ResolverConfig is the configuration of the host resolver
type ResolverConfig struct {
	// Nameserver pins lookups to one server (host[:port]). Uses the system resolver if empty.
	Nameserver string `yaml:"nameserver" mapstructure:"nameserver"`
	// Timeout is the timeout of a single nameserver exchange
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// CacheSize is the number of cached lookups. 0 disables the cache.
	CacheSize int `yaml:"cacheSize" mapstructure:"cacheSize"`
}

// LoaderConfig is the configuration for loader
type LoaderConfig struct {
	Type     string           `yaml:"type" mapstructure:"type"`
	Interval time.Duration    `yaml:"interval" mapstructure:"interval"`
	Http     HttpLoaderConfig `yaml:"http" mapstructure:"http"`
	File     FileLoaderConfig `yaml:"file" mapstructure:"file"`
}

// HttpLoaderConfig is the configuration for the http loader
type HttpLoaderConfig struct {
	Url      string             `yaml:"url" mapstructure:"url"`
	Token    string             `yaml:"token" mapstructure:"token"`
	Timeout  time.Duration      `yaml:"timeout" mapstructure:"timeout"`
	RetryCfg helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// FileLoaderConfig is the configuration for the file loader
type FileLoaderConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// HasLoader returns true if the monitor configuration is reloaded at runtime
func (c *Config) HasLoader() bool {
	return c.Loader.Type != ""
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// Build creates the resolver described by the configuration.
func (c *ResolverConfig) Build() (traceroute.Resolver, error) {
	r := traceroute.NewSystemResolver()
	if c.Nameserver != "" {
		r = traceroute.NewNameserverResolver(c.Nameserver, c.Timeout)
	}
	return traceroute.NewCachedResolver(r, c.CacheSize)
}

// Default returns the configuration used when no file, flag or
// environment variable overrides a value.
func Default() Config {
	return Config{
		Trace:    traceroute.DefaultOptions(),
		Resolver: ResolverConfig{Timeout: 2 * time.Second, CacheSize: 1024},
		Monitor:  monitor.DefaultConfig(),
		Loader: LoaderConfig{
			Http: HttpLoaderConfig{Timeout: 30 * time.Second, RetryCfg: monitor.DefaultRetry},
		},
		Api: api.Config{ListeningAddress: api.DefaultAddress},
	}
}
