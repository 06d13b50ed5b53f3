package lifecycle

import (
	"errors"
	"testing"

	"github.com/velosched/velosched/core/model"
)

func TestCancelRequiresReason(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10"}}

	if _, err := Apply(practices, "a", TransitionCancel, Args{}); err == nil {
		t.Error("cancel without a reason succeeded")
	}

	ch, err := Apply(practices, "a", TransitionCancel, Args{Reason: "storm"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Updated) != 1 || !ch.Updated[0].Cancelled || ch.Updated[0].CancelReason != "storm" {
		t.Errorf("changes: %+v", ch)
	}
}

func TestCancelConflicts(t *testing.T) {
	var conflict *model.StateConflictError
	practices := []model.Practice{
		{ID: "dead", Date: "2026-03-10", Deleted: true},
		{ID: "off", Date: "2026-03-12", Cancelled: true},
	}
	if _, err := Apply(practices, "dead", TransitionCancel, Args{Reason: "x"}); !errors.As(err, &conflict) {
		t.Errorf("cancel deleted: %v", err)
	}
	if _, err := Apply(practices, "off", TransitionCancel, Args{Reason: "x"}); !errors.As(err, &conflict) {
		t.Errorf("cancel cancelled: %v", err)
	}
}

func TestReinstateClearsCancellation(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10", Cancelled: true, CancelReason: "storm"}}
	ch, err := Apply(practices, "a", TransitionReinstate, Args{})
	if err != nil {
		t.Fatal(err)
	}
	got := ch.Updated[0]
	if got.Cancelled || got.CancelReason != "" {
		t.Errorf("got %+v", got)
	}

	var conflict *model.StateConflictError
	if _, err := Apply([]model.Practice{{ID: "a", Date: "2026-03-10"}}, "a", TransitionReinstate, Args{}); !errors.As(err, &conflict) {
		t.Errorf("reinstate scheduled: %v", err)
	}
}

func TestRescheduleToFreeDateLeavesTombstone(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10", Location: "Trailhead"}}
	ch, err := Apply(practices, "a", TransitionReschedule, Args{NewDate: "2026-03-14"})
	if err != nil {
		t.Fatal(err)
	}

	if len(ch.Updated) != 1 {
		t.Fatalf("updated: %+v", ch.Updated)
	}
	moved := ch.Updated[0]
	if moved.Date != "2026-03-14" || moved.RescheduledFrom == nil || *moved.RescheduledFrom != "2026-03-10" {
		t.Errorf("moved: %+v", moved)
	}
	if len(ch.Created) != 1 || !ch.Created[0].Deleted || ch.Created[0].Date != "2026-03-10" {
		t.Errorf("vacated date not tombstoned: %+v", ch.Created)
	}
}

func TestRescheduleMergesIntoOccupiedDate(t *testing.T) {
	practices := []model.Practice{
		{ID: "src", Date: "2026-03-10", Location: "Trailhead", Goals: "hills", AvailableRiderIDs: []string{"r1"}},
		{ID: "dst", Date: "2026-03-12", Location: "Park"},
	}
	ch, err := Apply(practices, "src", TransitionReschedule, Args{NewDate: "2026-03-12"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Created) != 0 {
		t.Errorf("merge created records: %+v", ch.Created)
	}
	if len(ch.Updated) != 2 {
		t.Fatalf("updated: %+v", ch.Updated)
	}
	merged, src := ch.Updated[0], ch.Updated[1]
	if merged.ID != "dst" || merged.Location != "Trailhead" || merged.Goals != "hills" {
		t.Errorf("merged: %+v", merged)
	}
	if merged.RescheduledFrom == nil || *merged.RescheduledFrom != "2026-03-10" {
		t.Errorf("merged origin: %+v", merged.RescheduledFrom)
	}
	if src.ID != "src" || !src.Deleted {
		t.Errorf("source not tombstoned: %+v", src)
	}
}

func TestRescheduleValidation(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10"}}
	if _, err := Apply(practices, "a", TransitionReschedule, Args{}); err == nil {
		t.Error("missing new date accepted")
	}
	if _, err := Apply(practices, "a", TransitionReschedule, Args{NewDate: "2026-03-10"}); err == nil {
		t.Error("same-date reschedule accepted")
	}
	if _, err := Apply(practices, "ghost", TransitionReschedule, Args{NewDate: "2026-03-12"}); err == nil {
		t.Error("unknown practice accepted")
	}
}

func TestDeleteTombstones(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10"}}
	ch, err := Apply(practices, "a", TransitionDelete, Args{})
	if err != nil {
		t.Fatal(err)
	}
	if !ch.Updated[0].Deleted {
		t.Errorf("got %+v", ch.Updated[0])
	}

	var conflict *model.StateConflictError
	practices[0].Deleted = true
	if _, err := Apply(practices, "a", TransitionDelete, Args{}); !errors.As(err, &conflict) {
		t.Errorf("double delete: %v", err)
	}
}

func TestRestoreRevivesInPlace(t *testing.T) {
	practices := []model.Practice{{ID: "a", Date: "2026-03-10", Deleted: true}}
	ch, err := Apply(practices, "a", TransitionRestore, Args{})
	if err != nil {
		t.Fatal(err)
	}
	if ch.Updated[0].Deleted || ch.Updated[0].Date != "2026-03-10" {
		t.Errorf("got %+v", ch.Updated[0])
	}
}

func TestRestoreRescheduledReturnsToOrigin(t *testing.T) {
	from := model.Date("2026-03-10")
	practices := []model.Practice{
		{ID: "moved", Date: "2026-03-14", RescheduledFrom: &from, Deleted: true},
		{ID: "stone", Date: "2026-03-10", Deleted: true},
	}
	ch, err := Apply(practices, "moved", TransitionRestore, Args{})
	if err != nil {
		t.Fatal(err)
	}
	got := ch.Updated[0]
	if got.Date != "2026-03-10" || got.RescheduledFrom != nil || got.Deleted {
		t.Errorf("got %+v", got)
	}
	if len(ch.Removed) != 1 || ch.Removed[0] != "stone" {
		t.Errorf("stale tombstone not cleared: %v", ch.Removed)
	}
}

func TestRestoreBlockedByOccupant(t *testing.T) {
	var conflict *model.StateConflictError
	from := model.Date("2026-03-10")
	practices := []model.Practice{
		{ID: "moved", Date: "2026-03-14", RescheduledFrom: &from, Deleted: true},
		{ID: "new", Date: "2026-03-10"},
	}
	if _, err := Apply(practices, "moved", TransitionRestore, Args{}); !errors.As(err, &conflict) {
		t.Errorf("restore onto occupied date: %v", err)
	}

	if _, err := Apply([]model.Practice{{ID: "a", Date: "2026-03-10"}}, "a", TransitionRestore, Args{}); !errors.As(err, &conflict) {
		t.Errorf("restore of live practice: %v", err)
	}
}

func TestRescheduleTombstonesOtherOccupantsOfOrigin(t *testing.T) {
	// Two actives on one date should never happen, but if it does the
	// reschedule clears the vacated date completely.
	practices := []model.Practice{
		{ID: "a", Date: "2026-03-10"},
		{ID: "b", Date: "2026-03-10"},
	}
	ch, err := Apply(practices, "a", TransitionReschedule, Args{NewDate: "2026-03-14"})
	if err != nil {
		t.Fatal(err)
	}
	var foundB bool
	for _, p := range ch.Updated {
		if p.ID == "b" && p.Deleted {
			foundB = true
		}
	}
	if !foundB {
		t.Errorf("second occupant not tombstoned: %+v", ch.Updated)
	}
}
