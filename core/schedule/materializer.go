// Package schedule turns declarative practice rules into concrete practice
// records. The materializer is pure: it takes the current settings and record
// set and returns the records to create and the ids to prune. Applying the
// plan against a repository is the planner's job, which keeps the decision
// logic synchronously testable.
package schedule

import (
	"sort"

	"github.com/velosched/velosched/core/attendance"
	"github.com/velosched/velosched/core/logger"
	"github.com/velosched/velosched/core/model"
)

// Plan is the outcome of one materialization pass. Pruning must be applied
// before creation so a record being pruned cannot be resurrected in the same
// pass.
type Plan struct {
	ToCreate []model.Practice
	ToPrune  []string
}

// Empty reports whether the plan changes nothing. Two consecutive passes over
// an unchanged record set must yield an empty second plan.
func (p Plan) Empty() bool { return len(p.ToCreate) == 0 && len(p.ToPrune) == 0 }

// Materializer derives practice records from season settings.
type Materializer struct {
	log logger.Logger
}

// NewMaterializer creates a materializer. A nil logger disables logging.
func NewMaterializer(log logger.Logger) *Materializer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Materializer{log: log}
}

// Plan computes one materialization pass over the existing record set.
func (m *Materializer) Plan(settings model.SeasonSettings, riders []model.Rider, coaches []model.Coach, existing []model.Practice) Plan {
	window := EffectiveWindow(settings, existing)
	valid := ValidDates(settings.Rules, window, existing)

	plan := Plan{}
	pruned := make(map[string]bool)
	for i := range existing {
		p := &existing[i]
		if p.Deleted {
			// Tombstones are inert and never pruned; they exist to block
			// regeneration on their date.
			continue
		}
		if reason := invalidReason(p, settings.Rules, window, valid); reason != "" {
			m.log.Debugw("pruning practice", map[string]any{
				"id": p.ID, "date": p.Date, "reason": reason,
			})
			plan.ToPrune = append(plan.ToPrune, p.ID)
			pruned[p.ID] = true
		}
	}

	dates := make([]model.Date, 0, len(valid))
	for d := range valid {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		if active := model.ActiveOn(existing, d); active != nil && !pruned[active.ID] {
			continue
		}
		if model.TombstoneOn(existing, d) != nil {
			// A user-deleted occurrence stays deleted across re-runs.
			continue
		}
		plan.ToCreate = append(plan.ToCreate, m.seed(d, settings.Rules, riders, coaches))
	}
	return plan
}

// seed builds a new practice for date d from its governing rule.
func (m *Materializer) seed(d model.Date, rules []model.PracticeRule, riders []model.Rider, coaches []model.Coach) model.Practice {
	rule := model.RuleFor(rules, d)
	p := model.Practice{Date: d}
	if rule != nil {
		p.StartTime = rule.StartTime
		p.EndTime = rule.EndTime
		p.Location = rule.Location
		p.Lat = rule.Lat
		p.Lng = rule.Lng
	}
	p.AvailableRiderIDs = attendance.Resolve(rule, riders)
	for _, c := range coaches {
		if !c.Archived {
			p.AvailableCoachIDs = append(p.AvailableCoachIDs, c.ID)
		}
	}
	return p
}

// invalidReason classifies why a practice must be pruned, or returns "".
func invalidReason(p *model.Practice, rules []model.PracticeRule, window model.SeasonWindow, valid map[model.Date]bool) string {
	if p.Date == "" {
		return "missing date"
	}
	if !p.Date.Valid() {
		return "unparsable date"
	}
	if p.RescheduledFrom != nil {
		// Reschedules are exceptions and always valid.
		return ""
	}
	if window.IsSet() && !window.Contains(p.Date) {
		return "outside season window"
	}
	if len(rules) > 0 && !valid[p.Date] {
		return "no matching rule"
	}
	return ""
}

// EffectiveWindow returns the explicit season window, or a window inferred
// from existing practice dates: the full months spanning the earliest and
// latest active practice. With neither, the zero window is returned and no
// dates are valid.
func EffectiveWindow(settings model.SeasonSettings, existing []model.Practice) model.SeasonWindow {
	if settings.Window.IsSet() {
		return settings.Window
	}
	var min, max model.Date
	for _, p := range existing {
		if !p.Active() || !p.Date.Valid() {
			continue
		}
		if min == "" || p.Date.Before(min) {
			min = p.Date
		}
		if max == "" || p.Date.After(max) {
			max = p.Date
		}
	}
	if min == "" {
		return model.SeasonWindow{}
	}
	return model.SeasonWindow{Start: min.MonthStart(), End: max.MonthEnd()}
}

// ValidDates computes the set of dates that should carry a practice: every
// day in the window matched by a rule, plus the dates of rescheduled
// practices, which are valid even outside the recurring pattern. A rule's
// ExcludeFromPlanner flag does not remove calendar validity; it only affects
// next-practice lookups.
func ValidDates(rules []model.PracticeRule, window model.SeasonWindow, existing []model.Practice) map[model.Date]bool {
	valid := make(map[model.Date]bool)
	if window.IsSet() {
		for d := window.Start; !d.After(window.End); d = d.AddDays(1) {
			if model.RuleFor(rules, d) != nil {
				valid[d] = true
			}
		}
	}
	for _, p := range existing {
		if p.Active() && p.RescheduledFrom != nil && p.Date.Valid() {
			valid[p.Date] = true
		}
	}
	return valid
}
