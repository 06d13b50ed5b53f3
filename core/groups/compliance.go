package groups

import (
	"fmt"

	"github.com/velosched/velosched/core/model"
)

// Issue describes one way a group falls short of the staffing policy.
// Compliance is surfaced for warnings only and never blocks group creation.
type Issue struct {
	GroupID string
	Label   string
	Reason  string
}

// Compliant reports whether the group has a qualified leader, stays within
// coach capacity and is not a degenerate one-coach one-rider pairing.
func Compliant(g model.Group, coaches map[string]model.Coach, s Settings) bool {
	return len(check(g, coaches, s)) == 0
}

// Check returns every compliance issue across the groups.
func Check(gs []model.Group, coaches map[string]model.Coach, s Settings) []Issue {
	var issues []Issue
	for _, g := range gs {
		issues = append(issues, check(g, coaches, s)...)
	}
	return issues
}

func check(g model.Group, coaches map[string]model.Coach, s Settings) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{GroupID: g.ID, Label: g.Label, Reason: fmt.Sprintf(format, args...)})
	}

	if g.Leader == "" {
		add("no leader assigned")
	} else if c, ok := coaches[g.Leader]; !ok {
		add("leader %s not found", g.Leader)
	} else if c.Level < s.MinLeaderLevel {
		add("leader level %d below required %d", c.Level, s.MinLeaderLevel)
	}

	coachCount := g.CoachCount()
	if len(g.RiderIDs) > coachCount*s.RidersPerCoach {
		add("%d riders exceed capacity of %d coaches", len(g.RiderIDs), coachCount)
	}
	if coachCount == 1 && len(g.RiderIDs) == 1 {
		add("one coach with one rider")
	}
	return issues
}
