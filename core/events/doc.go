// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - PracticeCreatedEvent: the materializer created a practice
//   - PracticePrunedEvent: the materializer removed an invalid practice
//   - LifecycleEvent: a practice changed lifecycle state
//   - PartitionEvent: groups were computed for a practice
//   - InfeasibleEvent: no compliant group count was found
package events
