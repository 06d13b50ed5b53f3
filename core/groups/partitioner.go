// Package groups partitions a practice's attendees into supervised groups
// under capacity and skill constraints, and resizes existing layouts while
// preserving relative pace ordering.
//
// Partitioning runs in four stages: choose a group count (or surface the
// candidate counts when no compliant one exists), pick a scored coach-count
// distribution, fill groups with pace-sorted riders, then assign coach
// roles. Every stage is deterministic so results are reproducible.
package groups

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/velosched/velosched/core/logger"
	"github.com/velosched/velosched/core/model"
)

// improveRounds bounds the local-improvement pass over rider placement.
const improveRounds = 50

// Candidate describes one possible group count for an infeasible
// configuration. The caller must pick one and retry with an explicit target.
type Candidate struct {
	GroupCount int
	MinSize    int
	MaxSize    int
}

// Result carries either the computed groups or, when no compliant group
// count exists, the candidate counts for the caller to choose from.
// Infeasibility is a distinguished result, not an error: the original system
// always puts a human in the loop at this point.
type Result struct {
	Groups     []model.Group
	Infeasible []Candidate
}

// Partitioner splits attendees into groups.
type Partitioner struct {
	settings Settings
	log      logger.Logger
}

// NewPartitioner validates the settings and returns a partitioner.
func NewPartitioner(s Settings, log logger.Logger) (*Partitioner, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("partition settings: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Partitioner{settings: s, log: log}, nil
}

// Partition splits riders into groups covering each rider exactly once and
// as many coaches as feasible. targetCount forces the group count and skips
// the feasibility scan; pass 0 to let the partitioner choose.
func (p *Partitioner) Partition(riders []model.Rider, coaches []model.Coach, targetCount int) (Result, error) {
	if len(riders) == 0 {
		return Result{}, model.Validationf("cannot partition zero attending riders")
	}
	if targetCount < 0 || targetCount > len(riders) {
		return Result{}, model.Validationf("target group count %d out of range for %d riders", targetCount, len(riders))
	}

	g := targetCount
	if g == 0 {
		chosen, candidates := p.chooseGroupCount(len(riders), coaches)
		if chosen == 0 {
			if len(candidates) == 0 {
				return Result{}, model.Validationf("no possible group count for %d riders with group size %d-%d",
					len(riders), p.settings.MinGroupSize, p.settings.MaxGroupSize)
			}
			p.log.Warnf("no compliant group count for %d riders, %d coaches; %d candidates", len(riders), len(coaches), len(candidates))
			infeasibleConfigurations.Inc()
			return Result{Infeasible: candidates}, nil
		}
		g = chosen
	}

	buckets := p.fillRiders(riders, g)
	p.improve(buckets)

	dist := bestDistribution(len(coaches), g, p.settings.PreferredCoachesPerGroup)
	gs := buildGroups(buckets)
	assignRoles(gs, dist, riderPaces(riders), coaches, p.settings)
	tagFitness(gs, riders)

	partitionsComputed.Inc()
	p.log.Infof("partitioned %d riders and %d coaches into %d groups", len(riders), len(coaches), g)
	return Result{Groups: gs}, nil
}

// chooseGroupCount scans ascending group counts and returns the first one
// satisfying every constraint, or 0 with the scanned candidates.
func (p *Partitioner) chooseGroupCount(riderCount int, coaches []model.Coach) (int, []Candidate) {
	s := p.settings
	coachCount := len(coaches)
	leaderCount := 0
	for _, c := range coaches {
		if c.Level >= s.MinLeaderLevel {
			leaderCount++
		}
	}

	lo := ceilDiv(riderCount, s.MaxGroupSize)
	if lo < 1 {
		lo = 1
	}
	hi := riderCount / s.MinGroupSize

	var candidates []Candidate
	for g := lo; g <= hi; g++ {
		candidates = append(candidates, Candidate{GroupCount: g, MinSize: riderCount / g, MaxSize: ceilDiv(riderCount, g)})

		avg := float64(riderCount) / float64(g)
		if avg < float64(s.MinGroupSize) || avg > float64(s.MaxGroupSize) {
			continue
		}
		coachSupply := coachCount >= g*s.PreferredCoachesPerGroup ||
			(s.MinLeaderLevel == 1 && coachCount >= g)
		if !coachSupply {
			continue
		}
		if leaderCount < g {
			continue
		}
		if coachCount > 0 && coachCount*s.RidersPerCoach < riderCount {
			continue
		}
		return g, nil
	}
	return 0, candidates
}

// fillRiders sorts riders by pace descending and fills groups sequentially,
// giving floor(R/g) riders to each group plus one extra to the first R mod g
// groups. Earlier groups are therefore fastest and equal-or-larger.
func (p *Partitioner) fillRiders(riders []model.Rider, g int) [][]model.Rider {
	sorted := sortRiders(riders)
	base := len(sorted) / g
	extra := len(sorted) % g

	buckets := make([][]model.Rider, g)
	idx := 0
	for i := 0; i < g; i++ {
		size := base
		if i < extra {
			size++
		}
		buckets[i] = append([]model.Rider(nil), sorted[idx:idx+size]...)
		idx += size
	}
	return buckets
}

// improve runs a bounded local-improvement pass: a rider who is the sole
// representative of their pace level in a group moves to a group that has
// peers of that pace, as long as both group sizes stay within
// [min-1, max+1]. Stops when a full pass makes no move.
func (p *Partitioner) improve(buckets [][]model.Rider) {
	s := p.settings
	for round := 0; round < improveRounds; round++ {
		moved := false
		for gi := range buckets {
			for ri := 0; ri < len(buckets[gi]); ri++ {
				r := buckets[gi][ri]
				if paceCount(buckets[gi], r.Pace) != 1 {
					continue
				}
				for gj := range buckets {
					if gj == gi || paceCount(buckets[gj], r.Pace) == 0 {
						continue
					}
					if len(buckets[gi])-1 < s.MinGroupSize-1 || len(buckets[gj])+1 > s.MaxGroupSize+1 {
						continue
					}
					buckets[gi] = append(buckets[gi][:ri], buckets[gi][ri+1:]...)
					buckets[gj] = insertByPace(buckets[gj], r)
					moved = true
					break
				}
				if moved {
					break
				}
			}
			if moved {
				break
			}
		}
		if !moved {
			return
		}
	}
}

func buildGroups(buckets [][]model.Rider) []model.Group {
	gs := make([]model.Group, len(buckets))
	for i, b := range buckets {
		ids := make([]string, len(b))
		for j, r := range b {
			ids[j] = r.ID
		}
		gs[i] = model.Group{
			ID:       fmt.Sprintf("group-%d", i+1),
			Label:    fmt.Sprintf("Group %d", i+1),
			RiderIDs: ids,
		}
	}
	return gs
}

// tagFitness derives the display hint from each group's average pace
// relative to the whole attendee set.
func tagFitness(gs []model.Group, riders []model.Rider) {
	paces := riderPaces(riders)
	all := make([]float64, 0, len(riders))
	for _, r := range riders {
		all = append(all, float64(r.Pace))
	}
	if len(all) == 0 {
		return
	}
	overall := stat.Mean(all, nil)
	for i := range gs {
		avg := avgPace(gs[i].RiderIDs, paces)
		switch {
		case avg > overall:
			gs[i].FitnessTag = "fast"
		case avg < overall:
			gs[i].FitnessTag = "endurance"
		default:
			gs[i].FitnessTag = "steady"
		}
	}
}

// sortRiders orders by pace descending with name, then id, breaking ties so
// results are reproducible.
func sortRiders(riders []model.Rider) []model.Rider {
	sorted := append([]model.Rider(nil), riders...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Pace != sorted[j].Pace {
			return sorted[i].Pace > sorted[j].Pace
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func insertByPace(bucket []model.Rider, r model.Rider) []model.Rider {
	pos := sort.Search(len(bucket), func(i int) bool { return bucket[i].Pace < r.Pace })
	bucket = append(bucket, model.Rider{})
	copy(bucket[pos+1:], bucket[pos:])
	bucket[pos] = r
	return bucket
}

func paceCount(bucket []model.Rider, pace int) int {
	n := 0
	for _, r := range bucket {
		if r.Pace == pace {
			n++
		}
	}
	return n
}

func riderPaces(riders []model.Rider) map[string]int {
	m := make(map[string]int, len(riders))
	for _, r := range riders {
		m[r.ID] = r.Pace
	}
	return m
}

func avgPace(ids []string, paces map[string]int) float64 {
	if len(ids) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(ids))
	for _, id := range ids {
		vals = append(vals, float64(paces[id]))
	}
	return stat.Mean(vals, nil)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
