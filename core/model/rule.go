package model

// FilterType selects which rider attribute a roster filter matches on.
type FilterType string

const (
	FilterNone        FilterType = "none"
	FilterGrade       FilterType = "grade"
	FilterGender      FilterType = "gender"
	FilterRacingGroup FilterType = "racingGroup"
)

// RosterFilter narrows the riders eligible for a practice rule. The zero
// filter (type none or empty value set semantics depend on type, see the
// attendance package) admits all non-archived riders.
type RosterFilter struct {
	Type   FilterType `json:"type"`
	Values []string   `json:"values"`
}

// Active reports whether the filter actually restricts attendance.
func (f *RosterFilter) Active() bool {
	return f != nil && f.Type != "" && f.Type != FilterNone
}

// Allows reports whether v is in the filter's allowed set.
func (f *RosterFilter) Allows(v string) bool {
	for _, a := range f.Values {
		if a == v {
			return true
		}
	}
	return false
}

// PracticeRule declares either a weekly recurring practice (Weekday set) or a
// one-off practice (SpecificDate set). A specific-date rule takes priority
// over any recurring rule matching the same date.
type PracticeRule struct {
	ID string `json:"id"`
	// Weekday is 0 (Sunday) through 6 (Saturday) for recurring rules.
	Weekday      *int  `json:"weekday,omitempty"`
	SpecificDate *Date `json:"specific_date,omitempty"`

	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`

	Filter *RosterFilter `json:"filter,omitempty"`

	// ExcludeFromPlanner keeps the practice on the calendar but skips it in
	// next-practice and auto-advance lookups.
	ExcludeFromPlanner bool `json:"exclude_from_planner"`
}

// Matches reports whether the rule produces a practice on d.
func (r PracticeRule) Matches(d Date) bool {
	if r.SpecificDate != nil {
		return *r.SpecificDate == d
	}
	if r.Weekday != nil {
		return int(d.Weekday()) == *r.Weekday
	}
	return false
}

// RuleFor resolves the rule governing date d. Specific-date rules win over
// recurring ones; among recurring rules the first match in declaration order
// is used. Returns nil when no rule matches.
func RuleFor(rules []PracticeRule, d Date) *PracticeRule {
	for i := range rules {
		if rules[i].SpecificDate != nil && *rules[i].SpecificDate == d {
			return &rules[i]
		}
	}
	for i := range rules {
		if rules[i].SpecificDate == nil && rules[i].Matches(d) {
			return &rules[i]
		}
	}
	return nil
}

// SeasonSettings is the read-only rule store consumed by the materializer.
type SeasonSettings struct {
	Window SeasonWindow   `json:"window"`
	Rules  []PracticeRule `json:"rules"`
}
