package groups

import (
	"fmt"

	"github.com/velosched/velosched/core/logger"
	"github.com/velosched/velosched/core/model"
)

// LayoutCache memoizes group layouts per group count for one practice, so
// toggling between counts restores the exact prior manual layout without
// recomputation. Callers must clear it whenever auto-assign, clear or clone
// operations rebuild the groups from scratch.
type LayoutCache struct {
	layouts map[int][]model.Group
}

// NewLayoutCache creates an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{layouts: make(map[int][]model.Group)}
}

// Store snapshots the layout under its group count.
func (c *LayoutCache) Store(gs []model.Group) {
	if c == nil || len(gs) == 0 {
		return
	}
	c.layouts[len(gs)] = model.CloneGroups(gs)
}

// Lookup returns the memoized layout for the given group count.
func (c *LayoutCache) Lookup(count int) ([]model.Group, bool) {
	if c == nil {
		return nil, false
	}
	gs, ok := c.layouts[count]
	if !ok {
		return nil, false
	}
	return model.CloneGroups(gs), true
}

// Clear drops every memoized layout.
func (c *LayoutCache) Clear() {
	if c != nil {
		c.layouts = make(map[int][]model.Group)
	}
}

// Resizer grows or shrinks a practice's group count by one while preserving
// relative pace ordering.
type Resizer struct {
	settings Settings
	log      logger.Logger
}

// NewResizer validates the settings and returns a resizer.
func NewResizer(s Settings, log logger.Logger) (*Resizer, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("partition settings: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Resizer{settings: s, log: log}, nil
}

// Grow splits the practice's riders into one more group. Each oversized
// group sheds its slowest riders into the next one, so the appended group
// fills with blended but still pace-ordered riders. Coaches are then
// redistributed from scratch across the new count.
func (r *Resizer) Grow(p *model.Practice, riders []model.Rider, coaches []model.Coach, cache *LayoutCache) error {
	n := len(p.Groups)
	if n == 0 {
		return &model.StateConflictError{Op: "grow", Reason: "practice has no groups"}
	}
	paces, total, err := groupedRiders(p.Groups, riders)
	if err != nil {
		return err
	}
	if total < n+1 {
		return &model.StateConflictError{Op: "grow", Reason: fmt.Sprintf("%d riders cannot fill %d groups", total, n+1)}
	}

	cache.Store(p.Groups)
	if cached, ok := cache.Lookup(n + 1); ok {
		p.Groups = cached
		resizeOperations.WithLabelValues("grow", "hit").Inc()
		r.log.Debugf("grow to %d groups served from layout cache", n+1)
		return nil
	}

	gs := model.CloneGroups(p.Groups)
	gs = append(gs, model.Group{})
	targets := evenSplit(total, n+1)
	for i := 0; i < n; i++ {
		excess := len(gs[i].RiderIDs) - targets[i]
		if excess <= 0 {
			continue
		}
		cut := len(gs[i].RiderIDs) - excess
		tail := append([]string(nil), gs[i].RiderIDs[cut:]...)
		gs[i].RiderIDs = gs[i].RiderIDs[:cut]
		// The shed riders are faster than everything already in the next
		// group, so they go in front.
		gs[i+1].RiderIDs = append(tail, gs[i+1].RiderIDs...)
	}

	r.restaff(gs, paces, coachPool(p.Groups, coaches), riders)
	p.Groups = gs
	resizeOperations.WithLabelValues("grow", "miss").Inc()
	r.log.Infof("grew practice %s to %d groups", p.Date, n+1)
	return nil
}

// Shrink dissolves the last group: its riders become the slowest of the new
// last group and its coaches return to the pool. Oversized groups then shed
// their fastest riders upward.
func (r *Resizer) Shrink(p *model.Practice, riders []model.Rider, coaches []model.Coach, cache *LayoutCache) error {
	n := len(p.Groups)
	if n <= 1 {
		return &model.StateConflictError{Op: "shrink", Reason: "cannot shrink below one group"}
	}
	paces, total, err := groupedRiders(p.Groups, riders)
	if err != nil {
		return err
	}

	cache.Store(p.Groups)
	if cached, ok := cache.Lookup(n - 1); ok {
		p.Groups = cached
		resizeOperations.WithLabelValues("shrink", "hit").Inc()
		r.log.Debugf("shrink to %d groups served from layout cache", n-1)
		return nil
	}

	gs := model.CloneGroups(p.Groups)
	dissolved := gs[n-1]
	gs = gs[:n-1]
	gs[n-2].RiderIDs = append(gs[n-2].RiderIDs, dissolved.RiderIDs...)

	targets := evenSplit(total, n-1)
	for i := n - 2; i >= 1; i-- {
		excess := len(gs[i].RiderIDs) - targets[i]
		if excess <= 0 {
			continue
		}
		head := append([]string(nil), gs[i].RiderIDs[:excess]...)
		gs[i].RiderIDs = gs[i].RiderIDs[excess:]
		// The shed riders are slower than everything already in the previous
		// group, so they go at its tail.
		gs[i-1].RiderIDs = append(gs[i-1].RiderIDs, head...)
	}

	r.restaff(gs, paces, coachPool(p.Groups, coaches), riders)
	p.Groups = gs
	resizeOperations.WithLabelValues("shrink", "miss").Inc()
	r.log.Infof("shrank practice %s to %d groups", p.Date, n-1)
	return nil
}

// restaff clears every coach slot, redistributes the pool across the new
// group count and refreshes labels and fitness tags.
func (r *Resizer) restaff(gs []model.Group, paces map[string]int, pool []model.Coach, riders []model.Rider) {
	for i := range gs {
		gs[i].Leader, gs[i].Sweep, gs[i].Roam, gs[i].ExtraRoam = "", "", "", nil
		gs[i].ID = fmt.Sprintf("group-%d", i+1)
		gs[i].Label = fmt.Sprintf("Group %d", i+1)
	}
	dist := bestDistribution(len(pool), len(gs), r.settings.PreferredCoachesPerGroup)
	assignRoles(gs, dist, paces, pool, r.settings)
	tagFitness(gs, riders)
}

// groupedRiders validates that every rider referenced by the groups still
// exists in the attendee set and returns the pace lookup plus the total
// rider count across groups.
func groupedRiders(gs []model.Group, riders []model.Rider) (map[string]int, int, error) {
	paces := riderPaces(riders)
	total := 0
	for _, g := range gs {
		for _, id := range g.RiderIDs {
			if _, ok := paces[id]; !ok {
				return nil, 0, &model.StateConflictError{Op: "resize", Reason: fmt.Sprintf("rider %s no longer in attendee set", id)}
			}
			total++
		}
	}
	return paces, total, nil
}

// coachPool collects the coaches currently assigned across the groups.
func coachPool(gs []model.Group, coaches []model.Coach) []model.Coach {
	byID := make(map[string]model.Coach, len(coaches))
	for _, c := range coaches {
		byID[c.ID] = c
	}
	var pool []model.Coach
	seen := make(map[string]bool)
	for _, g := range gs {
		for _, id := range g.CoachIDs() {
			if c, ok := byID[id]; ok && !seen[id] {
				pool = append(pool, c)
				seen[id] = true
			}
		}
	}
	return pool
}
