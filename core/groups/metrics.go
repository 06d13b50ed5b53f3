package groups

import "github.com/prometheus/client_golang/prometheus"

var (
	partitionsComputed       prometheus.Counter
	infeasibleConfigurations prometheus.Counter
	resizeOperations         *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.CounterVec) {
	parts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_partitions_total",
		Help: "Number of successful group partitions",
	})
	infeasible := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "group_partitions_infeasible_total",
		Help: "Number of partitions requiring a manual group count",
	})
	resize := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_resize_operations_total",
		Help: "Number of grow and shrink operations",
	}, []string{"direction", "cache"})
	return parts, infeasible, resize
}

func init() {
	partitionsComputed, infeasibleConfigurations, resizeOperations = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers partition metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(partitionsComputed, infeasibleConfigurations, resizeOperations)
}

// ResetMetrics reinitializes collectors for testing purposes and registers
// them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	partitionsComputed, infeasibleConfigurations, resizeOperations = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
