package metrics

import (
	"context"
	"time"

	"github.com/velosched/velosched/core/events"
	coremetrics "github.com/velosched/velosched/core/metrics"
	"github.com/velosched/velosched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// scheduling events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.InfeasibleEvent:
					if r, ok := sink.(coremetrics.PartitionRecorder); ok {
						_ = r.RecordPartition(coremetrics.PartitionResult{
							Date:       e.Date,
							Infeasible: true,
							Time:       time.Now(),
						})
					}
				case events.LifecycleEvent:
					if r, ok := sink.(coremetrics.LifecycleRecorder); ok {
						_ = r.RecordLifecycle(coremetrics.LifecycleChange{
							PracticeID: e.ID,
							Date:       e.Date,
							Transition: e.Transition,
							Time:       time.Now(),
						})
					}
				}
			}
		}
	}()
}
