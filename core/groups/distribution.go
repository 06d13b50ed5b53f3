package groups

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scoring weights for coach-count distributions. A lone coach in a group is
// penalized hard enough that any other arrangement wins.
const (
	singleCoachPenalty  = 100.0
	deviationPenalty    = 10.0
	exactPreferredBonus = 5.0
)

// bestDistribution returns the highest-scoring way to spread coachCount
// coaches across groupCount groups. Candidates are enumerated
// deterministically; score ties break toward the lexicographically smallest
// distribution so results are reproducible.
func bestDistribution(coachCount, groupCount, preferred int) []int {
	if groupCount <= 0 {
		return nil
	}
	var best []int
	bestScore := math.Inf(-1)
	for _, dist := range candidateDistributions(coachCount, groupCount, preferred) {
		score := scoreDistribution(dist, preferred)
		if score > bestScore || (score == bestScore && lexLess(dist, best)) {
			best = dist
			bestScore = score
		}
	}
	return best
}

// candidateDistributions produces a bounded, deduplicated candidate set:
// the even split, a split centered on the preferred count, a minimum-two
// variant avoiding single-coach groups, and every single-move perturbation
// of the even split.
func candidateDistributions(coachCount, groupCount, preferred int) [][]int {
	seen := make(map[string]bool)
	var out [][]int
	add := func(dist []int) {
		if dist == nil {
			return
		}
		key := distKey(dist)
		if !seen[key] {
			seen[key] = true
			out = append(out, dist)
		}
	}

	even := evenSplit(coachCount, groupCount)
	add(even)
	add(frontLoadedSplit(coachCount, groupCount, preferred))
	add(frontLoadedSplit(coachCount, groupCount, 2))

	for i := 0; i < groupCount; i++ {
		for j := 0; j < groupCount; j++ {
			if i == j || even[i] == 0 {
				continue
			}
			moved := append([]int(nil), even...)
			moved[i]--
			moved[j]++
			add(moved)
		}
	}
	return out
}

// evenSplit spreads the pool as evenly as possible, remainder to the front.
func evenSplit(coachCount, groupCount int) []int {
	dist := make([]int, groupCount)
	base := coachCount / groupCount
	extra := coachCount % groupCount
	for i := range dist {
		dist[i] = base
		if i < extra {
			dist[i]++
		}
	}
	return dist
}

// frontLoadedSplit hands out want coaches per group from the front until the
// pool runs dry, then spreads any leftover round-robin.
func frontLoadedSplit(coachCount, groupCount, want int) []int {
	dist := make([]int, groupCount)
	remaining := coachCount
	for i := 0; i < groupCount && remaining > 0; i++ {
		n := want
		if n > remaining {
			n = remaining
		}
		dist[i] = n
		remaining -= n
	}
	for i := 0; remaining > 0; i = (i + 1) % groupCount {
		dist[i]++
		remaining--
	}
	return dist
}

// scoreDistribution rates a distribution: heavy penalty for each group with
// exactly one coach, penalty for the average drifting from the preferred
// count, bonus for each group hitting it exactly.
func scoreDistribution(dist []int, preferred int) float64 {
	score := 0.0
	vals := make([]float64, len(dist))
	for i, n := range dist {
		vals[i] = float64(n)
		if n == 1 {
			score -= singleCoachPenalty
		}
		if n == preferred {
			score += exactPreferredBonus
		}
	}
	score -= deviationPenalty * math.Abs(stat.Mean(vals, nil)-float64(preferred))
	return score
}

func lexLess(a, b []int) bool {
	if b == nil {
		return true
	}
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func distKey(dist []int) string {
	key := make([]byte, 0, len(dist)*2)
	for _, n := range dist {
		key = append(key, byte(n), ',')
	}
	return string(key)
}
