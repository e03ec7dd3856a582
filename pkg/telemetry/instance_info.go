// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	instanceInfoMetricName = "hoptrace_instance_info"
	instanceInfoHelp       = "Build and platform metadata for this hoptrace instance. Emitted once per instance."
)

// RegisterInstanceInfo registers the hoptrace_instance_info info-style metric on the given registry.
// It sets the gauge to 1 with labels instance_name, version and platform.
func RegisterInstanceInfo(registry prometheus.Registerer, instanceName string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: instanceInfoMetricName,
			Help: instanceInfoHelp,
		},
		[]string{"instance_name", "version", "platform"},
	)
	info.WithLabelValues(instanceName, version(), runtime.GOOS+"/"+runtime.GOARCH).Set(1)
	return registry.Register(info)
}
