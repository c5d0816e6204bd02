package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// minSpanDeg pads a degenerate extent, about 11 m of latitude.
const minSpanDeg = 0.0001

// ErrInvalidGrid is returned for non-positive grid dimensions.
var ErrInvalidGrid = errors.New("invalid grid dimensions")

// DensityGrid counts positions per cell over a geographic extent. Row 0 is the
// northern edge, column 0 the western edge.
type DensityGrid struct {
	Width, Height int
	Bound         orb.Bound
	Cells         [][]float64
	Points        int
}

// NewDensityGrid bins points into a width x height grid spanning their bounding
// box. A degenerate extent (a single point, a straight north-south run) is padded
// so every point still lands in a cell.
func NewDensityGrid(points []orb.Point, width, height int) (*DensityGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidGrid)
	}

	g := DensityGrid{
		Width:  width,
		Height: height,
		Cells:  make([][]float64, height),
	}
	for y := range g.Cells {
		g.Cells[y] = make([]float64, width)
	}
	if len(points) == 0 {
		return &g, nil
	}

	g.Bound = padBound(orb.MultiPoint(points).Bound())

	for _, p := range points {
		x, y := g.cell(p)
		g.Cells[y][x]++
		g.Points++
	}
	return &g, nil
}

func padBound(b orb.Bound) orb.Bound {
	if b.Max.Lon()-b.Min.Lon() < minSpanDeg {
		c := b.Center().Lon()
		b.Min[0], b.Max[0] = c-minSpanDeg/2, c+minSpanDeg/2
	}
	if b.Max.Lat()-b.Min.Lat() < minSpanDeg {
		c := b.Center().Lat()
		b.Min[1], b.Max[1] = c-minSpanDeg/2, c+minSpanDeg/2
	}
	return b
}

func (g *DensityGrid) cell(p orb.Point) (x, y int) {
	fx := (p.Lon() - g.Bound.Min.Lon()) / (g.Bound.Max.Lon() - g.Bound.Min.Lon())
	fy := (g.Bound.Max.Lat() - p.Lat()) / (g.Bound.Max.Lat() - g.Bound.Min.Lat())

	x = min(max(int(fx*float64(g.Width)), 0), g.Width-1)
	y = min(max(int(fy*float64(g.Height)), 0), g.Height-1)
	return x, y
}

// Max returns the highest cell value.
func (g *DensityGrid) Max() float64 {
	var m float64
	for _, row := range g.Cells {
		for _, v := range row {
			m = math.Max(m, v)
		}
	}
	return m
}

// Values returns every non-zero cell value.
func (g *DensityGrid) Values() []float64 {
	var values []float64
	for _, row := range g.Cells {
		for _, v := range row {
			if v > 0 {
				values = append(values, v)
			}
		}
	}
	return values
}

// Blur returns a copy smoothed with a separable box filter of the given radius in
// cells. The total mass is preserved up to the grid edges.
func (g *DensityGrid) Blur(radius int) *DensityGrid {
	out := &DensityGrid{
		Width:  g.Width,
		Height: g.Height,
		Bound:  g.Bound,
		Points: g.Points,
		Cells:  make([][]float64, g.Height),
	}
	if radius <= 0 {
		for y, row := range g.Cells {
			out.Cells[y] = append([]float64(nil), row...)
		}
		return out
	}

	window := float64(2*radius + 1)
	tmp := make([][]float64, g.Height)
	for y := 0; y < g.Height; y++ {
		tmp[y] = make([]float64, g.Width)
		for x := 0; x < g.Width; x++ {
			var sum float64
			for k := x - radius; k <= x+radius; k++ {
				if k >= 0 && k < g.Width {
					sum += g.Cells[y][k]
				}
			}
			tmp[y][x] = sum / window
		}
	}
	for y := 0; y < g.Height; y++ {
		out.Cells[y] = make([]float64, g.Width)
		for x := 0; x < g.Width; x++ {
			var sum float64
			for k := y - radius; k <= y+radius; k++ {
				if k >= 0 && k < g.Height {
					sum += tmp[k][x]
				}
			}
			out.Cells[y][x] = sum / window
		}
	}
	return out
}
