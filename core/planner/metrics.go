package planner

import "github.com/prometheus/client_golang/prometheus"

var (
	materializeRuns      prometheus.Counter
	practicesCreated     prometheus.Counter
	practicesPruned      prometheus.Counter
	persistenceFailures  prometheus.Counter
	lifecycleTransitions *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, *prometheus.CounterVec) {
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "materialize_runs_total",
		Help: "Number of materializer passes",
	})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "practices_created_total",
		Help: "Number of practices created by the materializer",
	})
	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "practices_pruned_total",
		Help: "Number of invalid practices removed by the materializer",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "persistence_failures_total",
		Help: "Number of failed repository writes, retried on a later pass",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Number of persisted practice lifecycle transitions",
	}, []string{"transition"})
	return runs, created, pruned, failures, transitions
}

func init() {
	materializeRuns, practicesCreated, practicesPruned, persistenceFailures, lifecycleTransitions = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(materializeRuns, practicesCreated, practicesPruned, persistenceFailures, lifecycleTransitions)
}

// ResetMetrics reinitializes collectors for testing purposes and registers
// them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	materializeRuns, practicesCreated, practicesPruned, persistenceFailures, lifecycleTransitions = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
