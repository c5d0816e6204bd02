package metrics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// AxisStats holds descriptive statistics for one accelerometer channel.
type AxisStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"` // Sample standard deviation, 0 for a single value
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// AccelStats describes every accelerometer channel present in a recording. A nil
// field means no sample carried that channel.
type AccelStats struct {
	X         *AxisStats `json:"x,omitempty"`
	Y         *AxisStats `json:"y,omitempty"`
	Z         *AxisStats `json:"z,omitempty"`
	Magnitude *AxisStats `json:"magnitude,omitempty"`
}

// DescribeAccel computes per-axis statistics over all samples, whether or not they
// carry a position. It returns nil when no accelerometer data is present at all.
func DescribeAccel(samples []telemetry.Sample) *AccelStats {
	var xs, ys, zs, ms []float64
	for _, s := range samples {
		if isFinite(s.AccelX) {
			xs = append(xs, *s.AccelX)
		}
		if isFinite(s.AccelY) {
			ys = append(ys, *s.AccelY)
		}
		if isFinite(s.AccelZ) {
			zs = append(zs, *s.AccelZ)
		}
		if m := s.AccelMagnitude(); m != nil {
			ms = append(ms, *m)
		}
	}

	if len(xs) == 0 && len(ys) == 0 && len(zs) == 0 {
		return nil
	}

	return &AccelStats{
		X:         describe(xs),
		Y:         describe(ys),
		Z:         describe(zs),
		Magnitude: describe(ms),
	}
}

func describe(values []float64) *AxisStats {
	if len(values) == 0 {
		return nil
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := meanStdDev(sorted)
	if len(sorted) < 2 {
		std = 0
	}

	return &AxisStats{
		Count: len(sorted),
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		P25:   clampFinite(quantile(0.25, sorted)),
		P50:   clampFinite(quantile(0.50, sorted)),
		P75:   clampFinite(quantile(0.75, sorted)),
		Max:   sorted[len(sorted)-1],
	}
}

// meanStdDev rescales values near the float64 limit so the sums cannot overflow.
func meanStdDev(sorted []float64) (mean, std float64) {
	mean, std = stat.MeanStdDev(sorted, nil)
	if !math.IsInf(mean, 0) && !math.IsInf(std, 0) {
		return mean, std
	}

	scale := math.Max(math.Abs(sorted[0]), math.Abs(sorted[len(sorted)-1]))
	scaled := make([]float64, len(sorted))
	for i, v := range sorted {
		scaled[i] = v / scale
	}
	mean, std = stat.MeanStdDev(scaled, nil)
	return clampFinite(mean * scale), clampFinite(std * scale)
}

func clampFinite(v float64) float64 {
	return math.Max(-math.MaxFloat64, math.Min(v, math.MaxFloat64))
}

// quantile expects sorted input.
func quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
