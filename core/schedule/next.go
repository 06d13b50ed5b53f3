package schedule

import (
	"sort"

	"github.com/velosched/velosched/core/model"
)

// NextPractice returns the next active, non-cancelled practice on or after
// today. Practices governed by a rule flagged ExcludeFromPlanner are skipped:
// they exist on the calendar but auto-advance passes over them. Rescheduled
// practices have no governing rule and are never skipped.
func NextPractice(practices []model.Practice, rules []model.PracticeRule, today model.Date) *model.Practice {
	candidates := make([]*model.Practice, 0, len(practices))
	for i := range practices {
		p := &practices[i]
		if !p.Active() || p.Cancelled || p.Date.Before(today) {
			continue
		}
		if p.RescheduledFrom == nil {
			if rule := model.RuleFor(rules, p.Date); rule != nil && rule.ExcludeFromPlanner {
				continue
			}
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Date.Before(candidates[j].Date)
	})
	return candidates[0]
}
