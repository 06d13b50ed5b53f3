// Package planner orchestrates the scheduling core against the repository:
// it runs materializer passes, partitions and resizes practice groups and
// applies lifecycle transitions, publishing events and recording metrics
// along the way. All decisions are delegated to the pure core packages; the
// planner only sequences I/O around them.
package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/velosched/velosched/core/attendance"
	"github.com/velosched/velosched/core/events"
	"github.com/velosched/velosched/core/groups"
	"github.com/velosched/velosched/core/lifecycle"
	"github.com/velosched/velosched/core/logger"
	"github.com/velosched/velosched/core/metrics"
	"github.com/velosched/velosched/core/model"
	"github.com/velosched/velosched/core/repository"
	"github.com/velosched/velosched/core/schedule"
	"github.com/velosched/velosched/internal/eventbus"
)

// Planner coordinates the scheduling core.
type Planner struct {
	repo        repository.Repository
	mat         *schedule.Materializer
	partitioner *groups.Partitioner
	resizer     *groups.Resizer
	log         logger.Logger
	sink        metrics.Sink
	bus         eventbus.EventBus

	mu     sync.Mutex
	caches map[string]*groups.LayoutCache
}

// New creates a planner. The sink and bus may be nil.
func New(repo repository.Repository, settings groups.Settings, log logger.Logger, sink metrics.Sink, bus eventbus.EventBus) (*Planner, error) {
	if repo == nil {
		return nil, fmt.Errorf("planner: nil repository")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	partitioner, err := groups.NewPartitioner(settings, log)
	if err != nil {
		return nil, err
	}
	resizer, err := groups.NewResizer(settings, log)
	if err != nil {
		return nil, err
	}
	return &Planner{
		repo:        repo,
		mat:         schedule.NewMaterializer(log),
		partitioner: partitioner,
		resizer:     resizer,
		log:         log,
		sink:        sink,
		bus:         bus,
		caches:      make(map[string]*groups.LayoutCache),
	}, nil
}

// MaterializeResult summarizes one applied materializer pass.
type MaterializeResult struct {
	Created []model.Practice
	Pruned  []string
	// Failed counts repository writes that did not land. The affected
	// records are retried on the next pass.
	Failed int
}

// PlanMaterialize computes one materializer pass without applying it.
func (pl *Planner) PlanMaterialize(ctx context.Context) (schedule.Plan, error) {
	settings, err := pl.repo.SeasonSettings(ctx)
	if err != nil {
		return schedule.Plan{}, &PersistenceError{Op: "read season settings", Err: err}
	}
	riders, err := pl.repo.ListRiders(ctx)
	if err != nil {
		return schedule.Plan{}, &PersistenceError{Op: "list riders", Err: err}
	}
	coaches, err := pl.repo.ListCoaches(ctx)
	if err != nil {
		return schedule.Plan{}, &PersistenceError{Op: "list coaches", Err: err}
	}
	existing, err := pl.repo.ListPractices(ctx)
	if err != nil {
		return schedule.Plan{}, &PersistenceError{Op: "list practices", Err: err}
	}
	return pl.mat.Plan(settings, riders, coaches, existing), nil
}

// Materialize runs one materializer pass and applies it. Read failures abort
// the pass; per-record write failures are logged and retried next run so a
// flaky store never blocks calendar rendering. Pruning is applied before
// creation so a record being removed cannot be resurrected in the same pass.
func (pl *Planner) Materialize(ctx context.Context) (MaterializeResult, error) {
	settings, err := pl.repo.SeasonSettings(ctx)
	if err != nil {
		return MaterializeResult{}, &PersistenceError{Op: "read season settings", Err: err}
	}
	riders, err := pl.repo.ListRiders(ctx)
	if err != nil {
		return MaterializeResult{}, &PersistenceError{Op: "list riders", Err: err}
	}
	coaches, err := pl.repo.ListCoaches(ctx)
	if err != nil {
		return MaterializeResult{}, &PersistenceError{Op: "list coaches", Err: err}
	}
	existing, err := pl.repo.ListPractices(ctx)
	if err != nil {
		return MaterializeResult{}, &PersistenceError{Op: "list practices", Err: err}
	}

	plan := pl.mat.Plan(settings, riders, coaches, existing)
	res := MaterializeResult{}

	dates := make(map[string]model.Date, len(existing))
	for _, p := range existing {
		dates[p.ID] = p.Date
	}
	for _, id := range plan.ToPrune {
		if err := pl.repo.DeletePractice(ctx, id); err != nil {
			pl.log.Errorf("prune practice %s: %v", id, err)
			persistenceFailures.Inc()
			res.Failed++
			continue
		}
		res.Pruned = append(res.Pruned, id)
		practicesPruned.Inc()
		pl.publish(events.PracticePrunedEvent{ID: id, Date: dates[id]})
	}
	for _, p := range plan.ToCreate {
		created, err := pl.repo.CreatePractice(ctx, p)
		if err != nil {
			// Non-fatal: keep the record in the result so callers can render
			// it; the create is retried on the next pass.
			pl.log.Errorf("create practice on %s: %v", p.Date, err)
			persistenceFailures.Inc()
			res.Failed++
			created = p
		}
		res.Created = append(res.Created, created)
		practicesCreated.Inc()
		pl.publish(events.PracticeCreatedEvent{Practice: created})
	}

	materializeRuns.Inc()
	if err := pl.sink.RecordMaterializeRun(metrics.MaterializeRun{
		Time:    time.Now(),
		Created: len(res.Created),
		Pruned:  len(res.Pruned),
		Failed:  res.Failed,
	}); err != nil {
		pl.log.Errorf("metrics error: %v", err)
	}
	pl.log.Infof("materialized schedule: %d created, %d pruned, %d failed", len(res.Created), len(res.Pruned), res.Failed)
	return res, nil
}

// PartitionPractice computes groups for the practice on date. targetCount
// forces the group count; pass 0 to let the partitioner choose. An
// infeasible configuration comes back in the result with candidate counts
// for the caller to pick from.
func (pl *Planner) PartitionPractice(ctx context.Context, date model.Date, targetCount int) (groups.Result, error) {
	p, err := pl.activePractice(ctx, date)
	if err != nil {
		return groups.Result{}, err
	}
	riders, coaches, err := pl.attendees(ctx, p)
	if err != nil {
		return groups.Result{}, err
	}

	res, err := pl.partitioner.Partition(riders, coaches, targetCount)
	if err != nil {
		return groups.Result{}, err
	}
	if res.Infeasible != nil {
		// The event collector turns this into a sink record.
		pl.publish(events.InfeasibleEvent{Date: date, Candidates: len(res.Infeasible)})
		return res, nil
	}

	p.Groups = res.Groups
	p.PlanningStarted = true
	pl.cache(p.ID).Clear()
	if err := pl.repo.UpdatePractice(ctx, *p); err != nil {
		persistenceFailures.Inc()
		return groups.Result{}, &PersistenceError{Op: "update practice " + p.ID, Err: err}
	}

	pl.publish(events.PartitionEvent{Date: date, GroupCount: len(res.Groups), Riders: len(riders), Coaches: len(coaches)})
	pl.recordPartition(metrics.PartitionResult{Date: date, GroupCount: len(res.Groups), Riders: len(riders), Coaches: len(coaches)})
	return res, nil
}

// ClearGroups removes the practice's groups and drops its layout cache.
func (pl *Planner) ClearGroups(ctx context.Context, date model.Date) error {
	p, err := pl.activePractice(ctx, date)
	if err != nil {
		return err
	}
	p.Groups = nil
	p.PlanningStarted = false
	p.PublishedGroups = false
	pl.cache(p.ID).Clear()
	if err := pl.repo.UpdatePractice(ctx, *p); err != nil {
		persistenceFailures.Inc()
		return &PersistenceError{Op: "update practice " + p.ID, Err: err}
	}
	return nil
}

// Grow increases the practice's group count by one.
func (pl *Planner) Grow(ctx context.Context, date model.Date) error {
	return pl.resize(ctx, date, pl.resizer.Grow)
}

// Shrink decreases the practice's group count by one.
func (pl *Planner) Shrink(ctx context.Context, date model.Date) error {
	return pl.resize(ctx, date, pl.resizer.Shrink)
}

func (pl *Planner) resize(ctx context.Context, date model.Date, op func(*model.Practice, []model.Rider, []model.Coach, *groups.LayoutCache) error) error {
	p, err := pl.activePractice(ctx, date)
	if err != nil {
		return err
	}
	riders, coaches, err := pl.attendees(ctx, p)
	if err != nil {
		return err
	}
	if err := op(p, riders, coaches, pl.cache(p.ID)); err != nil {
		return err
	}
	if err := pl.repo.UpdatePractice(ctx, *p); err != nil {
		persistenceFailures.Inc()
		return &PersistenceError{Op: "update practice " + p.ID, Err: err}
	}
	return nil
}

// Transition applies a lifecycle transition. Every affected record is
// persisted; on the first write failure the whole transition is reported
// failed so the caller retries it as a unit.
func (pl *Planner) Transition(ctx context.Context, id string, tr lifecycle.Transition, args lifecycle.Args) error {
	practices, err := pl.repo.ListPractices(ctx)
	if err != nil {
		return &PersistenceError{Op: "list practices", Err: err}
	}
	ch, err := lifecycle.Apply(practices, id, tr, args)
	if err != nil {
		return err
	}

	var date model.Date
	for _, p := range ch.Updated {
		if p.ID == id {
			date = p.Date
		}
		if err := pl.repo.UpdatePractice(ctx, p); err != nil {
			persistenceFailures.Inc()
			return &PersistenceError{Op: "update practice " + p.ID, Err: err}
		}
	}
	for _, p := range ch.Created {
		if _, err := pl.repo.CreatePractice(ctx, p); err != nil {
			persistenceFailures.Inc()
			return &PersistenceError{Op: "create tombstone on " + string(p.Date), Err: err}
		}
	}
	for _, rid := range ch.Removed {
		if err := pl.repo.DeletePractice(ctx, rid); err != nil {
			persistenceFailures.Inc()
			return &PersistenceError{Op: "remove practice " + rid, Err: err}
		}
	}

	lifecycleTransitions.WithLabelValues(string(tr)).Inc()
	// Sink recording for transitions happens in the event collector, which
	// subscribes to the bus.
	pl.publish(events.LifecycleEvent{ID: id, Date: date, Transition: string(tr)})
	return nil
}

// MarkAllAttending resets the practice's rider availability to the full
// eligible set under its governing rule.
func (pl *Planner) MarkAllAttending(ctx context.Context, date model.Date) error {
	p, err := pl.activePractice(ctx, date)
	if err != nil {
		return err
	}
	settings, err := pl.repo.SeasonSettings(ctx)
	if err != nil {
		return &PersistenceError{Op: "read season settings", Err: err}
	}
	riders, err := pl.repo.ListRiders(ctx)
	if err != nil {
		return &PersistenceError{Op: "list riders", Err: err}
	}
	p.AvailableRiderIDs = attendance.Resolve(model.RuleFor(settings.Rules, p.Date), riders)
	if err := pl.repo.UpdatePractice(ctx, *p); err != nil {
		persistenceFailures.Inc()
		return &PersistenceError{Op: "update practice " + p.ID, Err: err}
	}
	return nil
}

// NextPractice returns the next upcoming practice honoring the
// exclude-from-planner rule flag, or nil when none is left.
func (pl *Planner) NextPractice(ctx context.Context, today model.Date) (*model.Practice, error) {
	settings, err := pl.repo.SeasonSettings(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "read season settings", Err: err}
	}
	practices, err := pl.repo.ListPractices(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list practices", Err: err}
	}
	return schedule.NextPractice(practices, settings.Rules, today), nil
}

// activePractice loads the non-deleted practice on date.
func (pl *Planner) activePractice(ctx context.Context, date model.Date) (*model.Practice, error) {
	practices, err := pl.repo.ListPractices(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list practices", Err: err}
	}
	p := model.ActiveOn(practices, date)
	if p == nil {
		return nil, model.Validationf("no active practice on %s", date)
	}
	return p, nil
}

// attendees resolves the practice's availability sets to rider and coach
// records, dropping ids that no longer exist.
func (pl *Planner) attendees(ctx context.Context, p *model.Practice) ([]model.Rider, []model.Coach, error) {
	riders, err := pl.repo.ListRiders(ctx)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "list riders", Err: err}
	}
	coaches, err := pl.repo.ListCoaches(ctx)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "list coaches", Err: err}
	}

	riderByID := make(map[string]model.Rider, len(riders))
	for _, r := range riders {
		riderByID[r.ID] = r
	}
	coachByID := make(map[string]model.Coach, len(coaches))
	for _, c := range coaches {
		coachByID[c.ID] = c
	}

	var attRiders []model.Rider
	for _, id := range p.AvailableRiderIDs {
		if r, ok := riderByID[id]; ok {
			attRiders = append(attRiders, r)
		}
	}
	var attCoaches []model.Coach
	for _, id := range p.AvailableCoachIDs {
		if c, ok := coachByID[id]; ok {
			attCoaches = append(attCoaches, c)
		}
	}
	return attRiders, attCoaches, nil
}

func (pl *Planner) cache(practiceID string) *groups.LayoutCache {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	c, ok := pl.caches[practiceID]
	if !ok {
		c = groups.NewLayoutCache()
		pl.caches[practiceID] = c
	}
	return c
}

func (pl *Planner) publish(e eventbus.Event) {
	if pl.bus != nil {
		pl.bus.Publish(e)
	}
}

func (pl *Planner) recordPartition(res metrics.PartitionResult) {
	rec, ok := pl.sink.(metrics.PartitionRecorder)
	if !ok {
		return
	}
	res.Time = time.Now()
	if err := rec.RecordPartition(res); err != nil {
		pl.log.Errorf("metrics error: %v", err)
	}
}
