package metrics

import "github.com/kilianp07/cwire/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, serves /metrics on this address for
	// long-running commands.
	PrometheusAddr string `json:"prometheus_addr"`
}
