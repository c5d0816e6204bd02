package metrics

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
)

func TestDistance_ZeroForSamePoint(t *testing.T) {
	points := []orb.Point{
		{0, 0},
		{29.1212, 40.9829},
		{-180, -90},
		{180, 90},
		{-73.9857, 40.7484},
	}
	for _, p := range points {
		assert.Zero(t, Distance(p, p), "point %v", p)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]orb.Point{
		{{29.1212, 40.9829}, {29.1222, 40.9839}},
		{{0, 0}, {0, 0.0001}},
		{{-0.1276, 51.5072}, {2.3522, 48.8566}},
		{{179.9999, 0}, {-179.9999, 0}},
		{{0, 0}, {180, 0}},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "pair %v", p)
	}
}

func TestDistance_ReferenceValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     orb.Point
		expected float64
		epsilon  float64
	}{
		{
			name:     "pitch diagonal step",
			a:        orb.Point{29.1212, 40.9829},
			b:        orb.Point{29.1222, 40.9839},
			expected: 139.3,
			epsilon:  0.005,
		},
		{
			name:     "one degree of latitude",
			a:        orb.Point{0, 0},
			b:        orb.Point{0, 1},
			expected: 111_195,
			epsilon:  0.001,
		},
		{
			name:     "london to paris",
			a:        orb.Point{-0.1276, 51.5072},
			b:        orb.Point{2.3522, 48.8566},
			expected: 343_500,
			epsilon:  0.005,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InEpsilon(t, tt.expected, Distance(tt.a, tt.b), tt.epsilon)
		})
	}
}

func TestDistance_AntipodalIsHalfCircumference(t *testing.T) {
	d := Distance(orb.Point{0, 0}, orb.Point{180, 0})
	assert.InDelta(t, EarthRadius*math.Pi, d, 1e-6)

	d = Distance(orb.Point{10, 45}, orb.Point{-170, -45})
	assert.InDelta(t, EarthRadius*math.Pi, d, 1.0)
}

func TestDistance_SmallSeparationIsStable(t *testing.T) {
	// 1e-7 degrees is roughly a centimeter
	d := Distance(orb.Point{29.1212, 40.9829}, orb.Point{29.1212, 40.9829001})
	assert.InDelta(t, 0.0111, d, 0.0005)
	assert.Greater(t, d, 0.0)
}

func TestDistance_MatchesOrbHaversine(t *testing.T) {
	pairs := [][2]orb.Point{
		{{29.1212, 40.9829}, {29.1222, 40.9839}},
		{{-0.1276, 51.5072}, {2.3522, 48.8566}},
		{{151.2093, -33.8688}, {174.7633, -36.8485}},
	}
	for _, p := range pairs {
		// orb works on the WGS84 equatorial radius
		expected := geo.DistanceHaversine(p[0], p[1]) * EarthRadius / orb.EarthRadius
		assert.InEpsilon(t, expected, Distance(p[0], p[1]), 1e-9, "pair %v", p)
	}
}
