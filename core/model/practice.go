package model

// Status is the lifecycle state of a practice, derived from its flags.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusDeleted     Status = "deleted"
)

// Practice is a materialized, dated instance of a recurring or one-off team
// session. Practices are soft-deleted only; a deleted record is a tombstone
// that blocks regeneration on its date.
type Practice struct {
	ID        string   `json:"id"`
	Date      Date     `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Goals     string   `json:"goals"`

	// Attendance sets, not yet partitioned into groups.
	AvailableRiderIDs []string `json:"available_rider_ids"`
	AvailableCoachIDs []string `json:"available_coach_ids"`

	Groups []Group `json:"groups"`

	Deleted         bool   `json:"deleted"`
	Cancelled       bool   `json:"cancelled"`
	CancelReason    string `json:"cancel_reason,omitempty"`
	RescheduledFrom *Date  `json:"rescheduled_from,omitempty"`

	PublishedGroups bool `json:"published_groups"`
	PlanningStarted bool `json:"planning_started"`
}

// Status derives the lifecycle state from the record's flags. Deleted wins
// over everything, then cancelled, then rescheduled.
func (p Practice) Status() Status {
	switch {
	case p.Deleted:
		return StatusDeleted
	case p.Cancelled:
		return StatusCancelled
	case p.RescheduledFrom != nil:
		return StatusRescheduled
	}
	return StatusScheduled
}

// Active reports whether the practice is not tombstoned.
func (p Practice) Active() bool { return !p.Deleted }

// ActiveOn returns the non-deleted practice on date d, or nil. At most one
// active practice may exist per calendar date.
func ActiveOn(practices []Practice, d Date) *Practice {
	for i := range practices {
		if practices[i].Active() && practices[i].Date == d {
			return &practices[i]
		}
	}
	return nil
}

// TombstoneOn returns the tombstoned practice on date d, or nil.
func TombstoneOn(practices []Practice, d Date) *Practice {
	for i := range practices {
		if practices[i].Deleted && practices[i].Date == d {
			return &practices[i]
		}
	}
	return nil
}

// Group is an ordered set of riders supervised by coaches in distinct roles.
// Groups exist only inside a practice and are never persisted independently.
type Group struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	RiderIDs []string `json:"rider_ids"`

	// Coach roles. Leader, sweep and roam are singular slots; extra roam is
	// unbounded. Empty string means the slot is unfilled.
	Leader    string   `json:"leader,omitempty"`
	Sweep     string   `json:"sweep,omitempty"`
	Roam      string   `json:"roam,omitempty"`
	ExtraRoam []string `json:"extra_roam,omitempty"`

	RouteID    *string `json:"route_id,omitempty"`
	FitnessTag string  `json:"fitness_tag,omitempty"`
}

// CoachIDs returns all coaches assigned to the group, leader first.
func (g Group) CoachIDs() []string {
	var ids []string
	for _, id := range []string{g.Leader, g.Sweep, g.Roam} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	ids = append(ids, g.ExtraRoam...)
	return ids
}

// CoachCount returns the number of coaches assigned to the group.
func (g Group) CoachCount() int { return len(g.CoachIDs()) }

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	cp := g
	cp.RiderIDs = append([]string(nil), g.RiderIDs...)
	cp.ExtraRoam = append([]string(nil), g.ExtraRoam...)
	if g.RouteID != nil {
		r := *g.RouteID
		cp.RouteID = &r
	}
	return cp
}

// CloneGroups deep-copies a group list.
func CloneGroups(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}
