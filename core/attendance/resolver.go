// Package attendance computes the eligible rider set for a practice. The
// resolution is pure: it is used both to seed a freshly materialized
// practice and to answer "who should be available" for an existing one.
package attendance

import "github.com/velosched/velosched/core/model"

// Resolve returns the ids of riders eligible under the rule's roster filter.
// Archived riders are always excluded. With no active filter every
// non-archived rider is eligible. Riders whose filtered attribute is empty or
// unrecognized pass through gender and racing-group filters unfiltered.
func Resolve(rule *model.PracticeRule, riders []model.Rider) []string {
	eligible := Eligible(rule, riders)
	ids := make([]string, 0, len(eligible))
	for _, r := range eligible {
		ids = append(ids, r.ID)
	}
	return ids
}

// Eligible returns the riders eligible under the rule's roster filter,
// preserving input order.
func Eligible(rule *model.PracticeRule, riders []model.Rider) []model.Rider {
	var filter *model.RosterFilter
	if rule != nil {
		filter = rule.Filter
	}
	var out []model.Rider
	for _, r := range riders {
		if r.Archived {
			continue
		}
		if admits(filter, r) {
			out = append(out, r)
		}
	}
	return out
}

func admits(f *model.RosterFilter, r model.Rider) bool {
	if !f.Active() {
		return true
	}
	switch f.Type {
	case model.FilterGrade:
		return f.Allows(model.NormalizeGrade(r.Grade))
	case model.FilterGender:
		code := model.NormalizeGender(r.Gender)
		if code == "" {
			return true
		}
		return f.Allows(code)
	case model.FilterRacingGroup:
		if r.RacingGroup == "" {
			return true
		}
		return f.Allows(r.RacingGroup)
	}
	return true
}
