package groups

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/velosched/velosched/core/model"
)

func testSettings() Settings {
	return Settings{
		RidersPerCoach:           6,
		MinLeaderLevel:           1,
		PreferredCoachesPerGroup: 2,
		MinGroupSize:             4,
		MaxGroupSize:             8,
	}
}

// makeRiders builds n riders with distinct descending paces: r1 is the
// fastest.
func makeRiders(n int) []model.Rider {
	riders := make([]model.Rider, n)
	for i := range riders {
		riders[i] = model.Rider{
			ID:   fmt.Sprintf("r%d", i+1),
			Name: fmt.Sprintf("Rider %02d", i+1),
			Pace: n - i,
		}
	}
	return riders
}

func makeCoaches(n, level int) []model.Coach {
	coaches := make([]model.Coach, n)
	for i := range coaches {
		coaches[i] = model.Coach{
			ID:    fmt.Sprintf("c%d", i+1),
			Name:  fmt.Sprintf("Coach %02d", i+1),
			Level: level,
			Pace:  n - i,
		}
	}
	return coaches
}

func TestPartitionEighteenRidersFourCoaches(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	riders := makeRiders(18)
	coaches := makeCoaches(4, 1)

	res, err := p.Partition(riders, coaches, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Infeasible != nil {
		t.Fatalf("unexpectedly infeasible: %v", res.Infeasible)
	}
	if len(res.Groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(res.Groups))
	}
	for i, g := range res.Groups {
		if len(g.RiderIDs) != 6 {
			t.Errorf("group %d has %d riders, want 6", i, len(g.RiderIDs))
		}
	}
}

func TestPartitionCoversEveryRiderOnce(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	riders := makeRiders(23)
	res, err := p.Partition(riders, makeCoaches(5, 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]int)
	for _, g := range res.Groups {
		for _, id := range g.RiderIDs {
			seen[id]++
		}
	}
	if len(seen) != len(riders) {
		t.Errorf("covered %d riders, want %d", len(seen), len(riders))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("rider %s appears %d times", id, n)
		}
	}
}

func TestPartitionPaceOrderedGroups(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	riders := makeRiders(18)
	paces := riderPaces(riders)

	res, err := p.Partition(riders, makeCoaches(4, 1), 0)
	if err != nil {
		t.Fatal(err)
	}
	// Distinct paces admit no improvement moves, so earlier groups must be
	// strictly faster.
	for i := 0; i+1 < len(res.Groups); i++ {
		slowest := paces[res.Groups[i].RiderIDs[len(res.Groups[i].RiderIDs)-1]]
		fastest := paces[res.Groups[i+1].RiderIDs[0]]
		if slowest <= fastest {
			t.Errorf("group %d slowest pace %d not above group %d fastest %d", i, slowest, i+1, fastest)
		}
	}
}

func TestPartitionIsDeterministic(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	riders := makeRiders(20)
	coaches := makeCoaches(5, 2)

	first, err := p.Partition(riders, coaches, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Same attendees in reverse input order.
	reversed := make([]model.Rider, len(riders))
	for i, r := range riders {
		reversed[len(riders)-1-i] = r
	}
	second, err := p.Partition(reversed, coaches, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Groups, second.Groups) {
		t.Errorf("input order changed the result:\n%+v\n%+v", first.Groups, second.Groups)
	}
}

func TestPartitionInfeasibleSurfacesCandidates(t *testing.T) {
	s := testSettings()
	s.MinLeaderLevel = 2
	p, err := NewPartitioner(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	// One coach cannot satisfy two groups at two preferred coaches each.
	res, err := p.Partition(makeRiders(10), makeCoaches(1, 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Infeasible == nil {
		t.Fatal("expected infeasible result")
	}
	if len(res.Groups) != 0 {
		t.Errorf("infeasible result carries groups: %v", res.Groups)
	}
	want := Candidate{GroupCount: 2, MinSize: 5, MaxSize: 5}
	if len(res.Infeasible) != 1 || res.Infeasible[0] != want {
		t.Errorf("candidates %+v, want [%+v]", res.Infeasible, want)
	}
}

func TestPartitionForcedTargetSkipsFeasibility(t *testing.T) {
	s := testSettings()
	s.MinLeaderLevel = 2
	p, err := NewPartitioner(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Infeasible automatically, but an explicit target goes through.
	res, err := p.Partition(makeRiders(10), makeCoaches(1, 2), 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Infeasible != nil {
		t.Fatalf("forced target reported infeasible: %v", res.Infeasible)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(res.Groups))
	}
}

func TestPartitionValidationErrors(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Partition(nil, makeCoaches(2, 2), 0); err == nil {
		t.Error("expected error for zero riders")
	}
	if _, err := p.Partition(makeRiders(5), nil, 6); err == nil {
		t.Error("expected error for target above rider count")
	}
	if _, err := p.Partition(makeRiders(5), nil, -1); err == nil {
		t.Error("expected error for negative target")
	}
	// 3 riders cannot form any group of at least 4.
	if _, err := p.Partition(makeRiders(3), makeCoaches(2, 2), 0); err == nil {
		t.Error("expected error when no group count is possible")
	}

	var verr *model.ValidationError
	_, err = p.Partition(nil, nil, 0)
	if !errors.As(err, &verr) {
		t.Errorf("error type: %T", err)
	}
}

func TestPartitionImprovesSolePaceRiders(t *testing.T) {
	s := Settings{
		RidersPerCoach:           6,
		MinLeaderLevel:           1,
		PreferredCoachesPerGroup: 1,
		MinGroupSize:             1,
		MaxGroupSize:             8,
	}
	p, err := NewPartitioner(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	riders := []model.Rider{
		{ID: "a", Name: "A", Pace: 5},
		{ID: "b", Name: "B", Pace: 5},
		{ID: "c", Name: "C", Pace: 5},
		{ID: "d", Name: "D", Pace: 3},
	}
	res, err := p.Partition(riders, makeCoaches(2, 1), 2)
	if err != nil {
		t.Fatal(err)
	}
	// The lone pace-5 rider seeded into the second group joins its peers.
	if len(res.Groups[0].RiderIDs) != 3 || len(res.Groups[1].RiderIDs) != 1 {
		t.Errorf("groups %v / %v", res.Groups[0].RiderIDs, res.Groups[1].RiderIDs)
	}
	if res.Groups[1].RiderIDs[0] != "d" {
		t.Errorf("second group holds %v", res.Groups[1].RiderIDs)
	}
}

func TestPartitionFitnessTags(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Partition(makeRiders(18), makeCoaches(4, 1), 0)
	if err != nil {
		t.Fatal(err)
	}
	// Paces 18..1 split into thirds: averages above, at and below the mean.
	tags := []string{res.Groups[0].FitnessTag, res.Groups[1].FitnessTag, res.Groups[2].FitnessTag}
	want := []string{"fast", "steady", "endurance"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags %v, want %v", tags, want)
	}
}

func TestPartitionAssignsLeadersByPriority(t *testing.T) {
	p, err := NewPartitioner(testSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Partition(makeRiders(18), makeCoaches(4, 1), 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, g := range res.Groups {
		if g.Leader == "" {
			t.Errorf("group %d has no leader", i)
		}
	}
}

func TestNewPartitionerRejectsBadSettings(t *testing.T) {
	bad := testSettings()
	bad.MinGroupSize = 9 // above max
	if _, err := NewPartitioner(bad, nil); err == nil {
		t.Error("expected settings validation error")
	}
}
