package metrics

import coremetrics "github.com/velosched/velosched/core/metrics"

// MultiSink fans scheduling records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMaterializeRun forwards the run to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordMaterializeRun(run coremetrics.MaterializeRun) error {
	for _, s := range m.Sinks {
		if err := s.RecordMaterializeRun(run); err != nil {
			return err
		}
	}
	return nil
}

// RecordPartition forwards partition results to sinks that support them.
func (m *MultiSink) RecordPartition(res coremetrics.PartitionResult) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PartitionRecorder); ok {
			if err := rec.RecordPartition(res); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordLifecycle forwards lifecycle changes to sinks that support them.
func (m *MultiSink) RecordLifecycle(ch coremetrics.LifecycleChange) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.LifecycleRecorder); ok {
			if err := rec.RecordLifecycle(ch); err != nil {
				return err
			}
		}
	}
	return nil
}
