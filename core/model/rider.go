package model

import (
	"strings"
	"unicode"
)

// Rider is a team member assigned to practice groups.
type Rider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Pace ranks relative speed; higher is faster.
	Pace        int    `json:"pace"`
	SkillLevel  int    `json:"skill_level"`
	Grade       string `json:"grade"`
	Gender      string `json:"gender"`
	RacingGroup string `json:"racing_group"`
	Archived    bool   `json:"archived"`
}

// Coach supervises practice groups. Level is the license level, 1 through 3.
type Coach struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Pace     int    `json:"pace"`
	Archived bool   `json:"archived"`
}

// NormalizeGender maps free-form gender text to M, F or NB. Unrecognized or
// empty input normalizes to the empty string, which attendance filters treat
// as unfiltered on that dimension.
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "boy", "b":
		return "M"
	case "f", "female", "girl", "g":
		return "F"
	case "nb", "nonbinary", "non-binary", "x":
		return "NB"
	}
	return ""
}

// NormalizeGrade reduces grade text to its digits, so "9th", "Grade 9" and
// "09" all compare equal as "9". Input without digits normalizes to the
// trimmed lowercase text.
func NormalizeGrade(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	out := strings.TrimLeft(digits.String(), "0")
	if out != "" {
		return out
	}
	if digits.Len() > 0 {
		// All zeros, e.g. kindergarten coded as "0".
		return "0"
	}
	return strings.ToLower(strings.TrimSpace(s))
}
