// Package metrics counts resolutions, op invocations and signins.
//
// Counters live on a private registry so a process can export them once at
// exit with WriteTextfile, in the format read by the node_exporter textfile
// collector.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeUndefined = "undefined"
	OutcomeTimeout   = "timeout"
)

// Recorder records metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	resolutionsTotal *prometheus.CounterVec
	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	signinsTotal     *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		resolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confsecrets_resolutions_total",
				Help: "Total number of configuration values resolved",
			},
			[]string{"variant", "outcome"},
		),
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confsecrets_op_commands_total",
				Help: "Total number of op invocations",
			},
			[]string{"command", "outcome"},
		),
		commandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "confsecrets_op_command_duration_seconds",
				Help:    "Duration of op invocations in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"command"},
		),
		signinsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confsecrets_op_signins_total",
				Help: "Total number of interactive 1Password signins",
			},
			[]string{"account", "outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordResolution counts one resolved value of the given variant.
func (r *Recorder) RecordResolution(variant, outcome string) {
	if r == nil {
		return
	}
	r.resolutionsTotal.WithLabelValues(variant, outcome).Inc()
}

// RecordCommand counts one op invocation and observes its duration.
func (r *Recorder) RecordCommand(command string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.commandsTotal.WithLabelValues(command, OutcomeFor(err)).Inc()
	r.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordSignin counts one signin attempt.
func (r *Recorder) RecordSignin(account string, err error) {
	if r == nil {
		return
	}
	r.signinsTotal.WithLabelValues(account, OutcomeFor(err)).Inc()
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return errors.New("metrics are not enabled")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// OutcomeFor maps an error to an outcome label.
func OutcomeFor(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeError
}
