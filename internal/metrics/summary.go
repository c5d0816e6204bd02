package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const msToKmh = 3.6

// Summary aggregates an augmented sample sequence.
type Summary struct {
	SampleCount           int         `json:"sample_count"`            // Number of augmented rows
	DurationS             float64     `json:"duration_s"`              // Sum of clamped time deltas
	TotalDistanceKm       float64     `json:"total_distance_km"`       // Sum of distances
	HighSpeedDistanceKm   float64     `json:"high_speed_distance_km"`  // Sum of distances covered above HighSpeedMps
	AverageSpeedKmh       float64     `json:"average_speed_kmh"`       // Mean instantaneous speed
	MaxSpeedKmh           float64     `json:"max_speed_kmh"`           // Peak instantaneous speed
	SprintCount           int         `json:"sprint_count"`            // Rows faster than SprintMps
	HighAccelerationCount int         `json:"high_acceleration_count"` // Rows with acceleration above AccelerationMps2
	HighDecelerationCount int         `json:"high_deceleration_count"` // Rows with acceleration below -AccelerationMps2
	Accelerometer         *AccelStats `json:"accelerometer,omitempty"` // Accelerometer statistics, nil when unavailable
}

// Summarize aggregates augmented samples using the given thresholds. An empty
// sequence yields a zero Summary. Invalid thresholds are rejected before anything
// is computed.
func Summarize(augmented []AugmentedSample, t Thresholds) (Summary, error) {
	if err := t.Validate(); err != nil {
		return Summary{}, err
	}
	if len(augmented) == 0 {
		return Summary{}, nil
	}

	var sum Summary
	var totalM, highSpeedM float64
	speeds := make([]float64, len(augmented))

	for i, a := range augmented {
		speeds[i] = a.SpeedMps
		totalM += a.DistanceM
		sum.DurationS += a.TimeDeltaS

		if a.SpeedMps > t.HighSpeedMps {
			highSpeedM += a.DistanceM
		}
		if a.SpeedMps > t.SprintMps {
			sum.SprintCount++
		}
		switch {
		case a.AccelerationMps2 > t.AccelerationMps2:
			sum.HighAccelerationCount++
		case a.AccelerationMps2 < -t.AccelerationMps2:
			sum.HighDecelerationCount++
		}
	}

	maxSpeed := floats.Max(speeds)
	// the mean of identical speeds can round a ulp above them
	meanSpeed := math.Min(stat.Mean(speeds, nil), maxSpeed)

	sum.SampleCount = len(augmented)
	sum.TotalDistanceKm = totalM / 1000
	sum.HighSpeedDistanceKm = highSpeedM / 1000
	sum.MaxSpeedKmh = maxSpeed * msToKmh
	sum.AverageSpeedKmh = meanSpeed * msToKmh

	return sum, nil
}
