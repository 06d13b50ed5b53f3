package model

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in ISO YYYY-MM-DD form. Dates are parsed and
// compared in local calendar time, never converted across timezones.
// String equality is date equality, which makes Date usable as a map key.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf truncates t to its calendar day in local time.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Valid reports whether d holds a parsable calendar date.
func (d Date) Valid() bool {
	if d == "" {
		return false
	}
	_, err := time.ParseInLocation(dateLayout, string(d), time.Local)
	return err == nil
}

// Time returns midnight local time on d. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.ParseInLocation(dateLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Weekday returns the day of week for d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d precedes o. ISO ordering is lexicographic.
func (d Date) Before(o Date) bool { return d < o }

// After reports whether d follows o.
func (d Date) After(o Date) bool { return d > o }

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date {
	t := d.Time()
	return DateOf(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local))
}

// MonthEnd returns the last day of d's month.
func (d Date) MonthEnd() Date {
	t := d.Time()
	return DateOf(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.Local))
}

func (d Date) String() string { return string(d) }

// SeasonWindow bounds the practice season, both dates inclusive.
type SeasonWindow struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// IsSet reports whether the window is usable. A window with an invalid bound
// or with start after end counts as unset; callers then derive the range from
// existing practice dates instead.
func (w SeasonWindow) IsSet() bool {
	return w.Start.Valid() && w.End.Valid() && !w.Start.After(w.End)
}

// Contains reports whether d falls inside the window.
func (w SeasonWindow) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}
