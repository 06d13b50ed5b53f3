package groups

import "github.com/go-playground/validator/v10"

// Settings defines the partitioning constraints.
type Settings struct {
	// RidersPerCoach caps how many riders one coach may supervise.
	RidersPerCoach int `json:"riders_per_coach" validate:"gt=0"`
	// MinLeaderLevel is the minimum license level for a group leader.
	MinLeaderLevel int `json:"min_leader_level" validate:"gte=1,lte=3"`
	// PreferredCoachesPerGroup is the coach count to aim for per group.
	PreferredCoachesPerGroup int `json:"preferred_coaches_per_group" validate:"gte=1"`
	// MinGroupSize and MaxGroupSize bound the preferred group size.
	MinGroupSize int `json:"min_group_size" validate:"gte=1"`
	MaxGroupSize int `json:"max_group_size" validate:"gtefield=MinGroupSize"`
}

var validate = validator.New()

// Validate checks the settings against their struct constraints.
func (s Settings) Validate() error {
	return validate.Struct(s)
}

// DefaultSettings returns the partitioning defaults.
func DefaultSettings() Settings {
	return Settings{
		RidersPerCoach:           6,
		MinLeaderLevel:           2,
		PreferredCoachesPerGroup: 2,
		MinGroupSize:             4,
		MaxGroupSize:             8,
	}
}
