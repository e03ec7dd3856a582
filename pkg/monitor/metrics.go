// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the route monitor
type metrics struct {
	hops    *prometheus.GaugeVec
	reached *prometheus.GaugeVec
	misses  *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	runs    *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the route monitor
func newMetrics() metrics {
	return metrics{
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hoptrace_route_hops",
				Help: "Number of hops recorded during the last discovery of the target.",
			},
			[]string{"target"},
		),
		reached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hoptrace_route_reached",
				Help: "Specifies if the target was reached within the hop budget.",
			},
			[]string{"target"},
		),
		misses: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hoptrace_route_missed_hops",
				Help: "Number of hops without an ICMP answer during the last discovery.",
			},
			[]string{"target"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hoptrace_hop_latency_seconds",
				Help:    "Histogram of round-trip times of answered hops in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"target"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoptrace_route_runs_total",
				Help: "Total number of discoveries per target and outcome.",
			},
			[]string{"target", "outcome"},
		),
	}
}

// List returns all metric collectors
func (m *metrics) List() []prometheus.Collector {
	return []prometheus.Collector{
		m.hops,
		m.reached,
		m.misses,
		m.latency,
		m.runs,
	}
}

// Set sets the metrics of one target result
func (m *metrics) Set(res Result, outcome string) {
	reached := 0.0
	if res.Reached {
		reached = 1
	}
	m.hops.WithLabelValues(res.Target).Set(float64(len(res.Hops)))
	m.reached.WithLabelValues(res.Target).Set(reached)
	m.misses.WithLabelValues(res.Target).Set(float64(res.misses()))
	for _, h := range res.Hops {
		if !h.Missed() {
			m.latency.WithLabelValues(res.Target).Observe(float64(h.ElapsedMS) / 1000)
		}
	}
	m.runs.WithLabelValues(res.Target, outcome).Inc()
}

// Remove removes the metrics of one target
func (m *metrics) Remove(target string) error {
	if !m.hops.DeleteLabelValues(target) {
		return ErrMetricNotFound{Label: target}
	}
	m.reached.DeleteLabelValues(target)
	m.misses.DeleteLabelValues(target)
	m.latency.DeleteLabelValues(target)
	m.runs.DeletePartialMatch(prometheus.Labels{"target": target})
	return nil
}
