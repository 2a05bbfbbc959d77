// Package metrics exposes Prometheus collectors for the round-robin
// coordinators. The collectors are always updated; registering them on a
// registry is optional.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy label values.
const (
	Polling = "polling"
	Baton   = "baton"
)

var (
	// TurnCounter tracks the turns taken, per strategy and worker.
	TurnCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roundrobin_turns_total",
		Help: "Total number of turns taken",
	}, []string{"strategy", "worker"})
	// RetryCounter tracks ownership checks that found another worker's turn.
	// For spinning workers this is the number of wasted spins.
	RetryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roundrobin_retries_total",
		Help: "Total number of ownership checks that did not grant a turn",
	}, []string{"strategy", "worker"})
	// StallWarningCounter tracks sequences that stopped advancing for longer
	// than the configured warning threshold.
	StallWarningCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roundrobin_stall_warnings_total",
		Help: "Total number of stall warnings",
	}, []string{"strategy"})
	// StallCounter tracks baton rings aborted by the liveness watchdog.
	StallCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roundrobin_stalls_total",
		Help: "Total number of baton rings aborted by the watchdog",
	})
	// WorkerGauge reports the number of running workers.
	WorkerGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roundrobin_workers",
		Help: "Current number of running workers",
	}, []string{"strategy"})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterMetrics registers the round-robin metrics on the provided registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TurnCounter, RetryCounter, StallWarningCounter, StallCounter, WorkerGauge)
}
