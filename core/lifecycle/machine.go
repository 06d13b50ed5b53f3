// Package lifecycle governs practice state transitions: cancel, reinstate,
// reschedule, delete and restore. Transitions are computed against the full
// practice set so cross-record invariants hold: at most one active practice
// per date, and a rescheduled practice's original date always carries a
// tombstone. The machine is pure; it returns the records to persist and the
// caller writes them together or retries the whole transition.
package lifecycle

import (
	"github.com/velosched/velosched/core/model"
)

// Transition names a lifecycle state change.
type Transition string

const (
	TransitionCancel     Transition = "cancel"
	TransitionReinstate  Transition = "reinstate"
	TransitionReschedule Transition = "reschedule"
	TransitionDelete     Transition = "delete"
	TransitionRestore    Transition = "restore"
)

// Args carries transition parameters. Cancel requires Reason; reschedule
// requires NewDate.
type Args struct {
	Reason  string
	NewDate model.Date
}

// Changes lists every record affected by a transition. Updated records are
// overwritten, Created records are new (a tombstone left on a vacated date),
// and Removed ids are deleted outright (a stale tombstone cleared by a
// restore). All of them must be persisted together; a partial write leaves
// the transition unapplied and it is retried as a whole.
type Changes struct {
	Updated []model.Practice
	Created []model.Practice
	Removed []string
}

// Apply computes the record changes for a transition on practice id.
func Apply(practices []model.Practice, id string, tr Transition, args Args) (Changes, error) {
	p := findPractice(practices, id)
	if p == nil {
		return Changes{}, model.Validationf("unknown practice %q", id)
	}
	switch tr {
	case TransitionCancel:
		return cancel(*p, args)
	case TransitionReinstate:
		return reinstate(*p)
	case TransitionReschedule:
		return reschedule(practices, *p, args)
	case TransitionDelete:
		return tombstone(*p)
	case TransitionRestore:
		return restore(practices, *p)
	}
	return Changes{}, model.Validationf("unknown transition %q", tr)
}

func cancel(p model.Practice, args Args) (Changes, error) {
	if p.Deleted {
		return Changes{}, &model.StateConflictError{Op: "cancel", Reason: "practice is deleted"}
	}
	if p.Cancelled {
		return Changes{}, &model.StateConflictError{Op: "cancel", Reason: "practice is already cancelled"}
	}
	if args.Reason == "" {
		return Changes{}, model.Validationf("cancellation requires a reason")
	}
	p.Cancelled = true
	p.CancelReason = args.Reason
	return Changes{Updated: []model.Practice{p}}, nil
}

func reinstate(p model.Practice) (Changes, error) {
	if p.Deleted {
		return Changes{}, &model.StateConflictError{Op: "reinstate", Reason: "practice is deleted"}
	}
	if !p.Cancelled {
		return Changes{}, &model.StateConflictError{Op: "reinstate", Reason: "practice is not cancelled"}
	}
	p.Cancelled = false
	p.CancelReason = ""
	return Changes{Updated: []model.Practice{p}}, nil
}

// reschedule moves the practice to a new date. The vacated date always ends
// up tombstoned so the materializer never regenerates it. When the new date
// already carries an active practice, the source's fields merge into it and
// the source record itself becomes the tombstone.
func reschedule(practices []model.Practice, p model.Practice, args Args) (Changes, error) {
	if p.Deleted {
		return Changes{}, &model.StateConflictError{Op: "reschedule", Reason: "practice is deleted"}
	}
	if !args.NewDate.Valid() {
		return Changes{}, model.Validationf("reschedule requires a valid new date")
	}
	if args.NewDate == p.Date {
		return Changes{}, model.Validationf("practice is already on %s", args.NewDate)
	}

	origin := p.Date
	var ch Changes

	if target := model.ActiveOn(practices, args.NewDate); target != nil && target.ID != p.ID {
		merged := mergeInto(*target, p)
		merged.RescheduledFrom = &origin
		p.Deleted = true
		ch.Updated = append(ch.Updated, merged, p)
	} else {
		p.RescheduledFrom = &origin
		p.Date = args.NewDate
		ch.Updated = append(ch.Updated, p)
		ch.Created = append(ch.Created, model.Practice{Date: origin, Deleted: true})
	}

	// Anything else still sitting on the vacated date is tombstoned too.
	for _, other := range practices {
		if other.ID != p.ID && other.Active() && other.Date == origin {
			other.Deleted = true
			ch.Updated = append(ch.Updated, other)
		}
	}
	return ch, nil
}

func tombstone(p model.Practice) (Changes, error) {
	if p.Deleted {
		return Changes{}, &model.StateConflictError{Op: "delete", Reason: "practice is already deleted"}
	}
	p.Deleted = true
	return Changes{Updated: []model.Practice{p}}, nil
}

// restore revives a tombstoned practice. A rescheduled record returns to its
// original date, clearing any tombstone left behind there.
func restore(practices []model.Practice, p model.Practice) (Changes, error) {
	if !p.Deleted {
		return Changes{}, &model.StateConflictError{Op: "restore", Reason: "practice is not deleted"}
	}

	var ch Changes
	date := p.Date
	if p.RescheduledFrom != nil {
		date = *p.RescheduledFrom
	}
	if occupant := model.ActiveOn(practices, date); occupant != nil && occupant.ID != p.ID {
		return Changes{}, &model.StateConflictError{Op: "restore", Reason: "an active practice already exists on " + string(date)}
	}
	if p.RescheduledFrom != nil {
		for _, other := range practices {
			if other.ID != p.ID && other.Deleted && other.Date == date {
				ch.Removed = append(ch.Removed, other.ID)
			}
		}
		p.Date = date
		p.RescheduledFrom = nil
	}
	p.Deleted = false
	ch.Updated = append(ch.Updated, p)
	return ch, nil
}

// mergeInto copies the source's non-empty fields onto the target record.
func mergeInto(target, src model.Practice) model.Practice {
	if src.StartTime != "" {
		target.StartTime = src.StartTime
	}
	if src.EndTime != "" {
		target.EndTime = src.EndTime
	}
	if src.Location != "" {
		target.Location = src.Location
	}
	if src.Goals != "" {
		target.Goals = src.Goals
	}
	if len(src.AvailableRiderIDs) > 0 {
		target.AvailableRiderIDs = append([]string(nil), src.AvailableRiderIDs...)
	}
	if len(src.AvailableCoachIDs) > 0 {
		target.AvailableCoachIDs = append([]string(nil), src.AvailableCoachIDs...)
	}
	if len(src.Groups) > 0 {
		target.Groups = model.CloneGroups(src.Groups)
	}
	return target
}

func findPractice(practices []model.Practice, id string) *model.Practice {
	for i := range practices {
		if practices[i].ID == id {
			return &practices[i]
		}
	}
	return nil
}
