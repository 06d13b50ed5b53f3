package model

import "testing"

func TestPracticeStatusPrecedence(t *testing.T) {
	from := Date("2026-03-10")
	cases := []struct {
		name string
		p    Practice
		want Status
	}{
		{"scheduled", Practice{}, StatusScheduled},
		{"rescheduled", Practice{RescheduledFrom: &from}, StatusRescheduled},
		{"cancelled", Practice{Cancelled: true}, StatusCancelled},
		{"cancelled over rescheduled", Practice{Cancelled: true, RescheduledFrom: &from}, StatusCancelled},
		{"deleted over everything", Practice{Deleted: true, Cancelled: true, RescheduledFrom: &from}, StatusDeleted},
	}
	for _, c := range cases {
		if got := c.p.Status(); got != c.want {
			t.Errorf("%s: got %s want %s", c.name, got, c.want)
		}
	}
}

func TestActiveOnAndTombstoneOn(t *testing.T) {
	practices := []Practice{
		{ID: "a", Date: "2026-03-10", Deleted: true},
		{ID: "b", Date: "2026-03-10"},
		{ID: "c", Date: "2026-03-12"},
	}
	if p := ActiveOn(practices, "2026-03-10"); p == nil || p.ID != "b" {
		t.Errorf("active on 03-10: got %+v", p)
	}
	if p := TombstoneOn(practices, "2026-03-10"); p == nil || p.ID != "a" {
		t.Errorf("tombstone on 03-10: got %+v", p)
	}
	if p := ActiveOn(practices, "2026-03-11"); p != nil {
		t.Errorf("unexpected active on empty date: %+v", p)
	}
	if p := TombstoneOn(practices, "2026-03-12"); p != nil {
		t.Errorf("unexpected tombstone: %+v", p)
	}
}

func TestGroupCoachIDs(t *testing.T) {
	g := Group{Leader: "c1", Roam: "c3", ExtraRoam: []string{"c4", "c5"}}
	got := g.CoachIDs()
	want := []string{"c1", "c3", "c4", "c5"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("coach %d: got %s want %s", i, got[i], want[i])
		}
	}
	if g.CoachCount() != 4 {
		t.Errorf("coach count: got %d", g.CoachCount())
	}
}

func TestGroupCloneIsDeep(t *testing.T) {
	route := "r1"
	g := Group{RiderIDs: []string{"a"}, ExtraRoam: []string{"c9"}, RouteID: &route}
	cp := g.Clone()
	cp.RiderIDs[0] = "x"
	cp.ExtraRoam[0] = "y"
	*cp.RouteID = "z"
	if g.RiderIDs[0] != "a" || g.ExtraRoam[0] != "c9" || *g.RouteID != "r1" {
		t.Errorf("clone shared memory with original: %+v", g)
	}
}

func TestNormalizeGender(t *testing.T) {
	cases := map[string]string{
		"M": "M", "male": "M", " Boy ": "M",
		"f": "F", "GIRL": "F",
		"nb": "NB", "Non-Binary": "NB",
		"": "", "unknown": "",
	}
	for in, want := range cases {
		if got := NormalizeGender(in); got != want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeGrade(t *testing.T) {
	cases := map[string]string{
		"9":       "9",
		"9th":     "9",
		"Grade 9": "9",
		"09":      "9",
		"0":       "0",
		"000":     "0",
		"K":       "k",
		" Senior": "senior",
	}
	for in, want := range cases {
		if got := NormalizeGrade(in); got != want {
			t.Errorf("NormalizeGrade(%q) = %q, want %q", in, got, want)
		}
	}
}
