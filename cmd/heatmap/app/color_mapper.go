package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for density visualization.
type ColorTheme string

const (
	DefaultTheme   ColorTheme = "default"   // Blue to red blended in HCL space
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map
)

var validThemes = map[ColorTheme]struct{}{
	DefaultTheme:   {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// ParseColorTheme validates a theme name. An empty name selects DefaultTheme.
func ParseColorTheme(s string) (ColorTheme, error) {
	if s == "" {
		return DefaultTheme, nil
	}
	t := ColorTheme(s)
	if _, ok := validThemes[t]; !ok {
		return "", fmt.Errorf("invalid color theme: %s", s)
	}
	return t, nil
}

// ColorMapper maps cell densities to colours using a pre-computed gradient.
type ColorMapper struct {
	colorMap  []color.Color
	theme     func(float64) color.Color
	themeName ColorTheme
	size      int
	bounds    DensityBounds
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds DensityBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
func NewColorMapperWithSize(theme ColorTheme, bounds DensityBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      size,
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = cm.theme(float64(i) / float64(size-1))
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds replaces the density bounds.
func (cm *ColorMapper) UpdateBounds(bounds DensityBounds) {
	cm.bounds = bounds
}

// GetColor returns the colour of a density value, clamped to the bounds.
func (cm *ColorMapper) GetColor(v float64) color.Color {
	index := int(math.Round(cm.bounds.Normalize(v) * float64(cm.size-1)))
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

func hsv(h, s, v float64) color.Color {
	return colorful.Hsv(math.Mod(h+360, 360), clamp01(s), clamp01(v)).Clamped()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(d float64) color.Color {
			return hsv(240-(d*240), 0.9+(d*0.1), math.Pow(d, 0.7))
		}

	case GrayscaleTheme:
		return func(d float64) color.Color {
			v := math.Pow(d, 0.7)
			return colorful.Color{R: v, G: v, B: v}
		}

	case JungleTheme:
		return func(d float64) color.Color {
			return hsv(120-(d*60), 1.0, 0.3+(math.Pow(d, 0.6)*0.7))
		}

	case ThermalTheme:
		return func(d float64) color.Color {
			switch {
			case d < 0.33:
				return colorful.Color{R: clamp01(d * 3)}
			case d < 0.66:
				return colorful.Color{R: 1, G: clamp01((d - 0.33) * 3)}
			default:
				return colorful.Color{R: 1, G: 1, B: clamp01((d - 0.66) * 3)}
			}
		}

	case MarineTheme:
		return func(d float64) color.Color {
			return hsv(240-(d*60), 1.0-(d*0.8), 0.3+(math.Pow(d, 0.6)*0.7))
		}

	default:
		cold := colorful.Hsv(240, 1, 0.9)
		hot := colorful.Hsv(0, 1, 0.9)
		return func(d float64) color.Color {
			return cold.BlendHcl(hot, clamp01(d)).Clamped()
		}
	}
}
