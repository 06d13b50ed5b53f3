package groups

import (
	"sort"

	"github.com/velosched/velosched/core/model"
)

// assignRoles fills the leader, sweep, roam and extra-roam slots.
//
// Leaders go to groups in priority order: larger, more pace-heterogeneous and
// slower groups first, since those need a strong leader most. Eligible
// leaders are handed out by pace descending until leaders or groups run out;
// a leaderless group is allowed and surfaced by the compliance check, never
// fatal. The remaining coaches fill sweep, then roam, then extra roam for
// groups still short of their distributed coach count, largest remaining
// need first.
func assignRoles(gs []model.Group, dist []int, paces map[string]int, coaches []model.Coach, s Settings) {
	var leaders, others []model.Coach
	for _, c := range coaches {
		if c.Level >= s.MinLeaderLevel {
			leaders = append(leaders, c)
		} else {
			others = append(others, c)
		}
	}
	sortCoaches(leaders)
	sortCoaches(others)

	for _, gi := range leaderPriority(gs, paces) {
		if len(leaders) == 0 {
			break
		}
		gs[gi].Leader = leaders[0].ID
		leaders = leaders[1:]
	}

	pool := append(others, leaders...)
	sortCoaches(pool)

	for len(pool) > 0 {
		gi := neediestGroup(gs, dist)
		if gi < 0 {
			break
		}
		assignSupportRole(&gs[gi], pool[0].ID)
		pool = pool[1:]
	}
}

// leaderPriority ranks group indices by size descending, distinct pace count
// descending, then average pace ascending.
func leaderPriority(gs []model.Group, paces map[string]int) []int {
	order := make([]int, len(gs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ga, gb := gs[order[a]], gs[order[b]]
		if len(ga.RiderIDs) != len(gb.RiderIDs) {
			return len(ga.RiderIDs) > len(gb.RiderIDs)
		}
		da, db := distinctPaces(ga.RiderIDs, paces), distinctPaces(gb.RiderIDs, paces)
		if da != db {
			return da > db
		}
		return avgPace(ga.RiderIDs, paces) < avgPace(gb.RiderIDs, paces)
	})
	return order
}

// neediestGroup returns the index of the group with the largest unmet coach
// need per the distribution, or -1 when every need is met. Lower index wins
// ties.
func neediestGroup(gs []model.Group, dist []int) int {
	best, need := -1, 0
	for i := range gs {
		want := 0
		if i < len(dist) {
			want = dist[i]
		}
		n := want - gs[i].CoachCount()
		if n > need {
			best, need = i, n
		}
	}
	return best
}

func assignSupportRole(g *model.Group, coachID string) {
	switch {
	case g.Sweep == "":
		g.Sweep = coachID
	case g.Roam == "":
		g.Roam = coachID
	default:
		g.ExtraRoam = append(g.ExtraRoam, coachID)
	}
}

func distinctPaces(ids []string, paces map[string]int) int {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		seen[paces[id]] = true
	}
	return len(seen)
}

func sortCoaches(cs []model.Coach) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Pace != cs[j].Pace {
			return cs[i].Pace > cs[j].Pace
		}
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].ID < cs[j].ID
	})
}
