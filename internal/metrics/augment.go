// Package metrics derives kinematics and summary statistics from player tracking samples.
package metrics

import (
	"github.com/paulmach/orb"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// MinTimeDelta is the floor applied to the elapsed time between two samples, in
// seconds. Duplicate or backwards timestamps are clamped to it instead of dividing
// by zero.
const MinTimeDelta = 0.001

// AugmentedSample is a sample enriched with kinematics relative to its predecessor
// in the filtered sequence.
type AugmentedSample struct {
	telemetry.Sample

	DistanceM        float64  `json:"distance_m"`                // Great-circle distance from the previous sample
	TimeDeltaS       float64  `json:"time_delta_s"`              // Elapsed time since the previous sample, at least MinTimeDelta
	SpeedMps         float64  `json:"speed_mps"`                 // DistanceM / TimeDeltaS
	AccelerationMps2 float64  `json:"acceleration_mps2"`         // First difference of SpeedMps, 0 for the first row
	AccelMagnitude   *float64 `json:"accel_magnitude,omitempty"` // Total accelerometer magnitude, if all axes present
}

// Usable returns the samples that carry both a timestamp and a valid position, in
// their original order. The input slice is not modified.
func Usable(samples []telemetry.Sample) []telemetry.Sample {
	usable := make([]telemetry.Sample, 0, len(samples))
	for _, s := range samples {
		if s.HasTimestamp() && s.HasPosition() {
			usable = append(usable, s)
		}
	}
	return usable
}

// Augment drops samples without a timestamp or position, then derives distance,
// time delta, speed and acceleration for every adjacent pair of what remains.
//
// The first usable sample is consumed as the reference point, so the result holds
// one row fewer than the usable samples. Fewer than two usable samples yield an
// empty, non-nil slice. Timestamps are taken as given and never re-sorted; see
// Engine for the ordering policies.
func Augment(samples []telemetry.Sample) []AugmentedSample {
	return augmentUsable(Usable(samples))
}

func augmentUsable(usable []telemetry.Sample) []AugmentedSample {
	if len(usable) < 2 {
		return []AugmentedSample{}
	}

	out := make([]AugmentedSample, 0, len(usable)-1)
	prevSpeed := 0.0
	for i := 1; i < len(usable); i++ {
		prev, cur := usable[i-1], usable[i]

		dist := Distance(position(prev), position(cur))
		dt := max(cur.Timestamp.Sub(prev.Timestamp).Seconds(), MinTimeDelta)
		speed := dist / dt

		var accel float64
		if i > 1 {
			accel = speed - prevSpeed
		}
		prevSpeed = speed

		out = append(out, AugmentedSample{
			Sample:           cur,
			DistanceM:        dist,
			TimeDeltaS:       dt,
			SpeedMps:         speed,
			AccelerationMps2: accel,
			AccelMagnitude:   cur.AccelMagnitude(),
		})
	}
	return out
}

func position(s telemetry.Sample) orb.Point {
	return orb.Point{*s.Longitude, *s.Latitude}
}
