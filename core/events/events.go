package events

import "github.com/velosched/velosched/core/model"

// PracticeCreatedEvent is published when the materializer creates a practice.
type PracticeCreatedEvent struct {
	Practice model.Practice
}

// PracticePrunedEvent is published when an invalid practice is removed.
type PracticePrunedEvent struct {
	ID   string
	Date model.Date
}

// LifecycleEvent is published after a lifecycle transition is persisted.
// Transition is the transition name, e.g. "cancel" or "reschedule".
type LifecycleEvent struct {
	ID         string
	Date       model.Date
	Transition string
}

// PartitionEvent is published when a practice's groups are computed.
type PartitionEvent struct {
	Date       model.Date
	GroupCount int
	Riders     int
	Coaches    int
}

// InfeasibleEvent is published when no compliant group count exists and the
// caller must choose one manually.
type InfeasibleEvent struct {
	Date       model.Date
	Candidates int
}
