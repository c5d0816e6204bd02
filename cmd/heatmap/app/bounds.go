package app

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// For 20 non-empty cells:
// - 5% percentile  = 1 cell
// - 95% percentile = 19th cell
const minimumSampleCount = 20

// DensityBounds represents the density range mapped onto the colour scale.
type DensityBounds struct {
	Min  float64 // 5th percentile of non-empty cells
	Max  float64 // 95th percentile of non-empty cells
	Mean float64 // Mean of non-empty cells
}

// NewDensityBounds computes percentile bounds over non-empty cell values so that a
// few hot cells do not wash out the rest of the map. Small inputs use the full
// range instead.
func NewDensityBounds(values []float64) DensityBounds {
	if len(values) == 0 {
		return DensityBounds{Max: 1}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	b := DensityBounds{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: stat.Mean(sorted, nil),
	}
	if len(sorted) >= minimumSampleCount {
		b.Min = stat.Quantile(0.05, stat.Empirical, sorted, nil)
		b.Max = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	if b.Max <= b.Min {
		b.Min = 0
		if b.Max <= 0 {
			b.Max = 1
		}
	}
	return b
}

// Normalize maps v into [0, 1].
func (b DensityBounds) Normalize(v float64) float64 {
	n := (v - b.Min) / (b.Max - b.Min)
	return min(max(n, 0), 1)
}
