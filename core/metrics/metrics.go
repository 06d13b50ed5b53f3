package metrics

import (
	"time"

	"github.com/velosched/velosched/core/model"
)

// MaterializeRun summarizes one materializer pass for observability purposes.
type MaterializeRun struct {
	Time    time.Time
	Created int
	Pruned  int
	Failed  int
}

// Sink records materializer runs.
type Sink interface {
	RecordMaterializeRun(run MaterializeRun) error
}

// PartitionResult represents a computed (or infeasible) partition.
type PartitionResult struct {
	Date       model.Date
	GroupCount int
	Riders     int
	Coaches    int
	Infeasible bool
	Time       time.Time
}

// PartitionRecorder is implemented by sinks able to record partitions.
type PartitionRecorder interface {
	RecordPartition(res PartitionResult) error
}

// LifecycleChange records a persisted lifecycle transition.
type LifecycleChange struct {
	PracticeID string
	Date       model.Date
	Transition string
	Time       time.Time
}

// LifecycleRecorder is implemented by sinks able to record transitions.
type LifecycleRecorder interface {
	RecordLifecycle(ch LifecycleChange) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMaterializeRun(MaterializeRun) error { return nil }
func (NopSink) RecordPartition(PartitionResult) error     { return nil }
func (NopSink) RecordLifecycle(LifecycleChange) error     { return nil }
