package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
	"github.com/roman-kulish/pitch-telemetry/internal/track"
)

const (
	minPlotSide = 64
	maxAspect   = 4.0
)

// HeatData accumulates the positions of a session and bins them into a density
// grid sized for the plot area.
type HeatData struct {
	Width, Height                int
	Player                       string
	TimestampStart, TimestampEnd time.Time
	Samples                      int     // Samples read, including those without a fix
	DistanceM                    float64 // Route length over consecutive fixes
	Grid                         *track.DensityGrid
	Bounds                       DensityBounds

	positions []telemetry.Sample
}

// NewHeatData creates an accumulator for a plot of the given width. A zero height
// is derived from the aspect ratio of the positions.
func NewHeatData(width, height int) *HeatData {
	return &HeatData{
		Width:  width,
		Height: height,
	}
}

// Update adds a stored sample.
func (h *HeatData) Update(s *telemetry.Sample) {
	h.Samples++
	if h.Player == "" {
		h.Player = s.Player
	}

	if s.HasTimestamp() {
		if h.TimestampStart.IsZero() || h.TimestampStart.After(s.Timestamp) {
			h.TimestampStart = s.Timestamp
		}
		if h.TimestampEnd.IsZero() || h.TimestampEnd.Before(s.Timestamp) {
			h.TimestampEnd = s.Timestamp
		}
	}

	if s.HasPosition() {
		h.positions = append(h.positions, *s)
	}
}

// Finish bins the positions into the grid, smooths it with a box blur of the
// given radius in pixels and computes the colour bounds.
func (h *HeatData) Finish(radius int) error {
	route := track.NewRoute(h.positions)
	if route.Empty() {
		return errors.New("no samples with a valid position")
	}

	for i := 1; i < len(route.Line); i++ {
		h.DistanceM += metrics.Distance(route.Line[i-1], route.Line[i])
	}

	if h.Height <= 0 {
		h.Height = plotHeight(route.Bound(), h.Width)
	}

	grid, err := track.NewDensityGrid(route.HeatPoints(), h.Width, h.Height)
	if err != nil {
		return fmt.Errorf("binning positions: %w", err)
	}

	h.Grid = grid.Blur(radius)
	h.Bounds = NewDensityBounds(h.Grid.Values())
	return nil
}

// MetersPerPixel returns the horizontal ground resolution of the plot.
func (h *HeatData) MetersPerPixel() float64 {
	b := h.Grid.Bound
	west := orb.Point{b.Min.Lon(), b.Center().Lat()}
	east := orb.Point{b.Max.Lon(), b.Center().Lat()}
	return metrics.Distance(west, east) / float64(h.Width)
}

// plotHeight keeps the ground aspect ratio of b, correcting longitude for
// latitude, within sane limits.
func plotHeight(b orb.Bound, width int) int {
	lonSpan := (b.Max.Lon() - b.Min.Lon()) * math.Cos(b.Center().Lat()*math.Pi/180)
	latSpan := b.Max.Lat() - b.Min.Lat()
	if lonSpan <= 0 || latSpan <= 0 {
		return width
	}

	aspect := math.Min(math.Max(latSpan/lonSpan, 1/maxAspect), maxAspect)
	return max(int(math.Round(float64(width)*aspect)), minPlotSide)
}
