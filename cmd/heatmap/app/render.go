package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 120.0
	fontSize       = 9.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.00

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 110
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	defaultDatetimeFormat = time.DateTime
)

var markerColor = color.RGBA{A: 255}

// BorderConfig defines the sizes of white space around the plot
type BorderConfig struct {
	Top    int // Space for longitude scale
	Left   int // Space for latitude scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for heat map visualization
type RenderConfig struct {
	DatetimeFormat string         // Format string for date/time display
	Location       *time.Location // Timezone for time display

	FontSize       float64    // Font size in points
	ColorTheme     ColorTheme // Color scheme for density values
	ColorMapSize   int        // Number of colors in gradient (0 for default)
	NoAnnotations  bool       // Render the plot area only
	BorderConfig   BorderConfig
	BackgroundFill color.Color // Colour of empty cells, white by default
}

// HeatmapRenderer handles the visualization of position density
type HeatmapRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewHeatmapRenderer creates a new heat map renderer with the given configuration
func NewHeatmapRenderer(config RenderConfig) (*HeatmapRenderer, error) {
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BackgroundFill == nil {
		config.BackgroundFill = color.White
	}

	switch {
	case config.NoAnnotations:
		config.BorderConfig = BorderConfig{}
	default:
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	theme, err := ParseColorTheme(string(config.ColorTheme))
	if err != nil {
		return nil, err
	}
	config.ColorTheme = theme

	return &HeatmapRenderer{config: config}, nil
}

// Render creates an image of the heat data with annotations
func (r *HeatmapRenderer) Render(heat *HeatData) (*image.RGBA, error) {
	if heat.Grid == nil {
		return nil, fmt.Errorf("heat data is not finished")
	}

	borders := r.config.BorderConfig
	fullWidth := heat.Width + borders.Left + borders.Right
	fullHeight := heat.Height + borders.Top + borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// 1:1 mapping between grid cells and pixels
	plotArea := image.Rect(
		borders.Left,
		borders.Top,
		borders.Left+heat.Width,
		borders.Top+heat.Height,
	)

	if r.colorMap == nil {
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, heat.Bounds, r.config.ColorMapSize)
	} else {
		r.colorMap.UpdateBounds(heat.Bounds)
	}

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			DatetimeFormat: r.config.DatetimeFormat,
			Location:       r.config.Location,
			FontSize:       r.config.FontSize,
			Borders:        borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, heat); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderHeat(img, plotArea, heat)
	return img, nil
}

func (r *HeatmapRenderer) renderHeat(img *image.RGBA, area image.Rectangle, heat *HeatData) {
	draw.Draw(img, area, image.NewUniform(r.config.BackgroundFill), image.Point{}, draw.Src)

	for y, row := range heat.Grid.Cells {
		for x, v := range row {
			if v > 0 {
				img.Set(area.Min.X+x, area.Min.Y+y, r.colorMap.GetColor(v))
			}
		}
	}
}

type annotatorConfig struct {
	DatetimeFormat string
	Location       *time.Location
	FontSize       float64
	Borders        BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, heat *HeatData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawLongitudeScale(img, heat); err != nil {
		return fmt.Errorf("drawing longitude scale: %w", err)
	}
	if err := a.drawLatitudeScale(img, heat); err != nil {
		return fmt.Errorf("drawing latitude scale: %w", err)
	}
	if err := a.drawInfoBar(img, heat); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

func (a *annotator) drawLongitudeScale(img *image.RGBA, heat *HeatData) error {
	b := heat.Grid.Bound
	lonMin, lonMax := b.Min.Lon(), b.Max.Lon()

	step := calculateNiceDegreeStep(lonMax-lonMin, heat.Width)
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	for lon := math.Ceil(lonMin/step) * step; lon <= lonMax; lon += step {
		x := a.config.Borders.Left + int((lon-lonMin)/(lonMax-lonMin)*float64(heat.Width))

		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, markerColor)
		}

		label := formatDegrees(lon, step)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing longitude label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawLatitudeScale(img *image.RGBA, heat *HeatData) error {
	b := heat.Grid.Bound
	latMin, latMax := b.Min.Lat(), b.Max.Lat()

	step := calculateNiceDegreeStep(latMax-latMin, heat.Height)
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for lat := math.Ceil(latMin/step) * step; lat <= latMax; lat += step {
		// Row 0 is the northern edge.
		y := a.config.Borders.Top + int((latMax-lat)/(latMax-latMin)*float64(heat.Height))

		for x := a.config.Borders.Left - tickMarkHeight; x < a.config.Borders.Left; x++ {
			img.Set(x, y, markerColor)
		}

		label := formatDegrees(lat, step)
		width := font.MeasureString(a.fontFace, label)
		textY := y + fontHeight/2 - metrics.Descent.Round()
		pt := freetype.Pt(a.config.Borders.Left-tickMarkHeight-4-width.Round(), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing latitude label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, heat *HeatData) error {
	var parts []string

	if heat.Player != "" {
		parts = append(parts, "Player: "+heat.Player)
	}
	if !heat.TimestampStart.IsZero() {
		parts = append(parts, fmt.Sprintf("Time: %s - %s",
			heat.TimestampStart.In(a.config.Location).Format(a.config.DatetimeFormat),
			heat.TimestampEnd.In(a.config.Location).Format(a.config.DatetimeFormat)))
	}
	parts = append(parts,
		fmt.Sprintf("Samples: %s", humanize.Comma(int64(heat.Samples))),
		fmt.Sprintf("Distance: %s", humanize.SIWithDigits(heat.DistanceM, 1, "m")),
		fmt.Sprintf("1px = %s", humanize.SIWithDigits(heat.MetersPerPixel(), 2, "m")),
	)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(strings.Join(parts, "; "), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// calculateNiceDegreeStep picks a 1-2-5 step giving roughly one label per
// pixelsPerLabel pixels and at least two labels.
func calculateNiceDegreeStep(span float64, pixels int) float64 {
	if span <= 0 {
		return 1
	}

	desiredSteps := math.Max(float64(pixels)/pixelsPerLabel, 2)
	target := span / desiredSteps

	magnitude := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= target {
			return step
		}
	}
	return 10 * magnitude
}

func formatDegrees(v, step float64) string {
	decimals := max(0, int(math.Ceil(-math.Log10(step))))
	return fmt.Sprintf("%.*f°", decimals, v)
}
