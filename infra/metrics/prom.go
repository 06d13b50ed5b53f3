package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/velosched/velosched/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	partitions *prometheus.CounterVec
	lifecycle  *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sink_materialize_runs_total",
		Help: "Total number of recorded materializer passes",
	})
	partitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_partition_events_total",
		Help: "Total number of recorded partition computations",
	}, []string{"infeasible"})
	lifecycle := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_lifecycle_changes_total",
		Help: "Total number of recorded lifecycle transitions",
	}, []string{"transition"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(partitions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			partitions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lifecycle); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lifecycle = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{runs: runs, partitions: partitions, lifecycle: lifecycle}, nil
}

// RecordMaterializeRun increments the run counter.
func (s *PromSink) RecordMaterializeRun(coremetrics.MaterializeRun) error {
	s.runs.Inc()
	return nil
}

// RecordPartition increments the partition counter.
func (s *PromSink) RecordPartition(res coremetrics.PartitionResult) error {
	s.partitions.WithLabelValues(strconv.FormatBool(res.Infeasible)).Inc()
	return nil
}

// RecordLifecycle increments the transition counter.
func (s *PromSink) RecordLifecycle(ch coremetrics.LifecycleChange) error {
	s.lifecycle.WithLabelValues(ch.Transition).Inc()
	return nil
}
