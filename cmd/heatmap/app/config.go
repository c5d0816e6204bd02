package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	defaultWidth  = 800
	defaultRadius = 3
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Width         int
	Height        int // 0 derives the height from the position extent
	Radius        int // Blur radius in pixels
	Theme         ColorTheme
	TimeZone      *time.Location
	MinTimestamp  *time.Time
	MaxTimestamp  *time.Time
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		Width:    defaultWidth,
		Radius:   defaultRadius,
		Theme:    DefaultTheme,
		TimeZone: time.Local,
	}
}

// NewConfigFromCLI parses the process command line.
func NewConfigFromCLI() (*Config, error) {
	c, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, theme, timeZone, from, to string
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.IntVar(&c.Width, "width", defaultWidth, "Plot width in pixels")
	fs.IntVar(&c.Height, "height", 0, "Plot height in pixels, derived from the positions when omitted")
	fs.IntVar(&c.Radius, "radius", defaultRadius, "Blur radius in pixels, 0 disables smoothing")
	fs.StringVar(&theme, "theme", string(DefaultTheme), "Color theme. [default, classic, grayscale, jungle, thermal, marine]")
	fs.StringVar(&timeZone, "tz", "Local", "Time zone for timestamps, e.g. Europe/London")
	fs.StringVar(&from, "from", "", "Only use samples at or after this time (RFC 3339)")
	fs.StringVar(&to, "to", "", "Only use samples at or before this time (RFC 3339)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as coordinate scales")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		var t time.Time
		switch f.Name {
		case "from":
			if t, parseErr = time.Parse(time.RFC3339, from); parseErr == nil {
				c.MinTimestamp = &t
			}
		case "to":
			if t, parseErr = time.Parse(time.RFC3339, to); parseErr == nil {
				c.MaxTimestamp = &t
			}
		}
	})

	var err error
	if parseErr != nil {
		err = fmt.Errorf("invalid time filter: %w", parseErr)
	} else if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.Width < minPlotSide {
		err = fmt.Errorf("width must be at least %d pixels", minPlotSide)
	} else if c.Height != 0 && c.Height < minPlotSide {
		err = fmt.Errorf("height must be at least %d pixels", minPlotSide)
	} else if c.Radius < 0 {
		err = errors.New("radius must not be negative")
	}
	if err != nil {
		return nil, err
	}

	if c.Theme, err = ParseColorTheme(strings.ToLower(theme)); err != nil {
		return nil, err
	}
	if c.TimeZone, err = time.LoadLocation(timeZone); err != nil {
		return nil, fmt.Errorf("invalid time zone: %w", err)
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
