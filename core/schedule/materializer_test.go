package schedule

import (
	"testing"

	"github.com/velosched/velosched/core/model"
)

func weekday(d int) *int { return &d }

// March 2026 starts on a Sunday; its Tuesdays are the 3rd, 10th, 17th,
// 24th and 31st.
func marchSettings() model.SeasonSettings {
	return model.SeasonSettings{
		Window: model.SeasonWindow{Start: "2026-03-01", End: "2026-03-31"},
		Rules: []model.PracticeRule{
			{ID: "tue", Weekday: weekday(2), StartTime: "17:30", EndTime: "19:00", Location: "Trailhead"},
		},
	}
}

func apply(plan Plan, existing []model.Practice) []model.Practice {
	pruned := make(map[string]bool)
	for _, id := range plan.ToPrune {
		pruned[id] = true
	}
	var out []model.Practice
	for _, p := range existing {
		if !pruned[p.ID] {
			out = append(out, p)
		}
	}
	for _, p := range plan.ToCreate {
		p.ID = "new-" + string(p.Date)
		out = append(out, p)
	}
	return out
}

func TestPlanGeneratesRuleMatchedDates(t *testing.T) {
	m := NewMaterializer(nil)
	riders := []model.Rider{{ID: "r1"}, {ID: "r2", Archived: true}}
	coaches := []model.Coach{{ID: "c1"}, {ID: "c2", Archived: true}}

	plan := m.Plan(marchSettings(), riders, coaches, nil)
	if len(plan.ToPrune) != 0 {
		t.Fatalf("unexpected prunes: %v", plan.ToPrune)
	}
	want := []model.Date{"2026-03-03", "2026-03-10", "2026-03-17", "2026-03-24", "2026-03-31"}
	if len(plan.ToCreate) != len(want) {
		t.Fatalf("created %d practices, want %d", len(plan.ToCreate), len(want))
	}
	for i, p := range plan.ToCreate {
		if p.Date != want[i] {
			t.Errorf("practice %d on %s, want %s", i, p.Date, want[i])
		}
		if p.StartTime != "17:30" || p.Location != "Trailhead" {
			t.Errorf("practice %d missing rule fields: %+v", i, p)
		}
		if len(p.AvailableRiderIDs) != 1 || p.AvailableRiderIDs[0] != "r1" {
			t.Errorf("practice %d riders: %v", i, p.AvailableRiderIDs)
		}
		if len(p.AvailableCoachIDs) != 1 || p.AvailableCoachIDs[0] != "c1" {
			t.Errorf("practice %d coaches: %v", i, p.AvailableCoachIDs)
		}
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	m := NewMaterializer(nil)
	settings := marchSettings()

	first := m.Plan(settings, nil, nil, nil)
	existing := apply(first, nil)
	second := m.Plan(settings, nil, nil, existing)
	if !second.Empty() {
		t.Errorf("second pass not empty: create=%d prune=%d", len(second.ToCreate), len(second.ToPrune))
	}
}

func TestPlanTombstoneBlocksRegeneration(t *testing.T) {
	m := NewMaterializer(nil)
	settings := marchSettings()
	existing := []model.Practice{
		{ID: "dead", Date: "2026-03-10", Deleted: true},
	}

	plan := m.Plan(settings, nil, nil, existing)
	for _, p := range plan.ToCreate {
		if p.Date == "2026-03-10" {
			t.Error("tombstoned date regenerated")
		}
	}
	if len(plan.ToPrune) != 0 {
		t.Errorf("tombstone pruned: %v", plan.ToPrune)
	}
	if len(plan.ToCreate) != 4 {
		t.Errorf("created %d, want 4", len(plan.ToCreate))
	}
}

func TestPlanPrunesWhenRuleChanges(t *testing.T) {
	m := NewMaterializer(nil)
	settings := marchSettings()
	// Practice on a Wednesday no rule matches anymore.
	existing := []model.Practice{
		{ID: "stale", Date: "2026-03-11"},
		{ID: "keep", Date: "2026-03-10"},
	}

	plan := m.Plan(settings, nil, nil, existing)
	if len(plan.ToPrune) != 1 || plan.ToPrune[0] != "stale" {
		t.Errorf("prunes: %v", plan.ToPrune)
	}
	for _, p := range plan.ToCreate {
		if p.Date == "2026-03-10" {
			t.Error("kept practice recreated")
		}
	}
}

func TestPlanPrunesOutsideWindowAndBadDates(t *testing.T) {
	m := NewMaterializer(nil)
	settings := marchSettings()
	existing := []model.Practice{
		{ID: "early", Date: "2026-02-24"}, // a Tuesday, but before the window
		{ID: "none", Date: ""},
		{ID: "junk", Date: "garbage"},
	}

	plan := m.Plan(settings, nil, nil, existing)
	if len(plan.ToPrune) != 3 {
		t.Errorf("prunes: %v", plan.ToPrune)
	}
}

func TestPlanKeepsRescheduledOutsidePattern(t *testing.T) {
	m := NewMaterializer(nil)
	settings := marchSettings()
	from := model.Date("2026-03-10")
	existing := []model.Practice{
		// Moved to a Saturday; no rule matches but the exception stays.
		{ID: "moved", Date: "2026-03-14", RescheduledFrom: &from},
		{ID: "origin", Date: "2026-03-10", Deleted: true},
	}

	plan := m.Plan(settings, nil, nil, existing)
	for _, id := range plan.ToPrune {
		if id == "moved" {
			t.Error("rescheduled practice pruned")
		}
	}
	for _, p := range plan.ToCreate {
		if p.Date == "2026-03-14" || p.Date == "2026-03-10" {
			t.Errorf("regenerated over exception on %s", p.Date)
		}
	}
}

func TestEffectiveWindowInferredFromPractices(t *testing.T) {
	settings := model.SeasonSettings{
		Rules: []model.PracticeRule{{ID: "tue", Weekday: weekday(2)}},
	}
	existing := []model.Practice{
		{ID: "a", Date: "2026-03-10"},
		{ID: "b", Date: "2026-05-05"},
		{ID: "dead", Date: "2026-07-07", Deleted: true},
	}
	w := EffectiveWindow(settings, existing)
	if w.Start != "2026-03-01" || w.End != "2026-05-31" {
		t.Errorf("inferred window %+v", w)
	}

	if w := EffectiveWindow(model.SeasonSettings{}, nil); w.IsSet() {
		t.Errorf("window from nothing: %+v", w)
	}
}

func TestPlanNoWindowNoPracticesDoesNothing(t *testing.T) {
	m := NewMaterializer(nil)
	settings := model.SeasonSettings{
		Rules: []model.PracticeRule{{ID: "tue", Weekday: weekday(2)}},
	}
	plan := m.Plan(settings, nil, nil, nil)
	if !plan.Empty() {
		t.Errorf("plan not empty: %+v", plan)
	}
}

func TestPlanSpecificDateRuleWinsOverRecurring(t *testing.T) {
	m := NewMaterializer(nil)
	special := model.Date("2026-03-10")
	settings := marchSettings()
	settings.Rules = append(settings.Rules, model.PracticeRule{
		ID: "race-day", SpecificDate: &special, StartTime: "08:00", EndTime: "12:00", Location: "Course",
	})

	plan := m.Plan(settings, nil, nil, nil)
	var found bool
	for _, p := range plan.ToCreate {
		if p.Date == special {
			found = true
			if p.Location != "Course" || p.StartTime != "08:00" {
				t.Errorf("specific-date rule did not win: %+v", p)
			}
		}
	}
	if !found {
		t.Error("specific date missing from plan")
	}
}
