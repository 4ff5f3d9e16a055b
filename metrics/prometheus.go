// Package metrics holds the Prometheus collectors for conformance runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
	OutcomeSkip = "skip"
)

// Metrics holds all collectors of a run. Collectors are registered on a
// private registry so parallel runs and tests never collide.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	ScriptsTotal    *prometheus.CounterVec
	ScriptDuration  *prometheus.HistogramVec
	CommandDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spectest_commands_total",
				Help: "Total number of script commands by type and outcome",
			},
			[]string{"type", "outcome"},
		),

		ScriptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spectest_scripts_total",
				Help: "Total number of scripts by outcome",
			},
			[]string{"outcome"},
		),

		ScriptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spectest_script_duration_seconds",
				Help:    "Script run time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spectest_command_duration_seconds",
				Help:    "Command run time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"type"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCommand records one command outcome and its duration.
func (m *Metrics) RecordCommand(commandType, outcome string, d time.Duration) {
	m.CommandsTotal.WithLabelValues(commandType, outcome).Inc()
	m.CommandDuration.WithLabelValues(commandType).Observe(d.Seconds())
}

// RecordScript records one script outcome and its duration.
func (m *Metrics) RecordScript(source, outcome string, d time.Duration) {
	m.ScriptsTotal.WithLabelValues(outcome).Inc()
	m.ScriptDuration.WithLabelValues(source).Observe(d.Seconds())
}

// WriteFile writes the current values in the Prometheus text format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
