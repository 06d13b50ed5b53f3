package config

import "fmt"

// ScheduleConfig controls the periodic materializer pass.
type ScheduleConfig struct {
	// IntervalSeconds is the delay between materializer passes. Zero
	// disables the background loop; materialization then only runs on
	// startup and via the CLI.
	IntervalSeconds int `json:"interval_seconds"`
	// MaterializeOnStart runs one pass when the service boots.
	MaterializeOnStart bool `json:"materialize_on_start"`
}

// SetDefaults applies sane defaults.
func (c *ScheduleConfig) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 3600
	}
}

// Validate checks field ranges.
func (c ScheduleConfig) Validate() error {
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("interval_seconds must not be negative")
	}
	return nil
}
