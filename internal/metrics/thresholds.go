package metrics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidThreshold is returned when a threshold is negative, NaN or infinite.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Thresholds configures the event counters of Summarize. HighSpeedMps and SprintMps
// are independent, e.g. sprints counted above 7 m/s with high-speed distance above 5 m/s.
type Thresholds struct {
	HighSpeedMps     float64 `yaml:"highSpeedMps" json:"high_speed_mps"`        // Speed above which distance counts as high-speed
	SprintMps        float64 `yaml:"sprintMps" json:"sprint_mps"`               // Speed above which a sample counts as a sprint
	AccelerationMps2 float64 `yaml:"accelerationMps2" json:"acceleration_mps2"` // Symmetric bound for high acceleration/deceleration
}

// DefaultThresholds apply when no thresholds are configured.
var DefaultThresholds = Thresholds{
	HighSpeedMps:     5.0,
	SprintMps:        5.0,
	AccelerationMps2: 2.0,
}

// Validate rejects negative and non-finite thresholds.
func (t Thresholds) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{name: "high speed", value: t.HighSpeedMps},
		{name: "sprint", value: t.SprintMps},
		{name: "acceleration", value: t.AccelerationMps2},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			return fmt.Errorf("%s threshold %v: %w", c.name, c.value, ErrInvalidThreshold)
		}
	}
	return nil
}
