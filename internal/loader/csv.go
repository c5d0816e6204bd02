package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// ErrNoColumns is returned when the header has none of the recognised columns.
var ErrNoColumns = errors.New("no recognised columns")

type column int

const (
	colTimestamp column = iota
	colLatitude
	colLongitude
	colAccelX
	colAccelY
	colAccelZ
	colPlayer
)

var columnAliases = map[string]column{
	"timestamp": colTimestamp,
	"datetime":  colTimestamp,
	"time":      colTimestamp,
	"lat":       colLatitude,
	"latitude":  colLatitude,
	"lon":       colLongitude,
	"lng":       colLongitude,
	"long":      colLongitude,
	"longitude": colLongitude,
	"accx":      colAccelX,
	"accy":      colAccelY,
	"accz":      colAccelZ,
	"player":    colPlayer,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
}

// Time-only cells carry no date and are placed on the Unix epoch day.
var clockLayouts = []string{
	"15:04:05.000",
	"15:04:05",
}

// File reads samples from a CSV file on disk.
type File struct {
	path string
}

// NewFile returns a sample source backed by the CSV file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Samples reads and parses the whole file.
func (f *File) Samples() (samples []telemetry.Sample, err error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening '%s': %w", f.path, err)
	}
	defer func() {
		if cErr := fh.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing '%s': %w", f.path, cErr)
		}
	}()

	return ReadCSV(fh)
}

// ReadCSV parses CSV records into samples. The header is matched case-insensitively
// against the recognised column names; unknown columns are ignored. Cells that are
// empty or fail to parse leave the corresponding field absent rather than failing.
func ReadCSV(r io.Reader) ([]telemetry.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading header: %w", ErrNoColumns)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[column]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if c, ok := columnAliases[name]; ok {
			if _, seen := columns[c]; !seen {
				columns[c] = i
			}
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("header %v: %w", header, ErrNoColumns)
	}

	var samples []telemetry.Sample
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		cell := func(c column) string {
			i, ok := columns[c]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		samples = append(samples, telemetry.Sample{
			Timestamp: parseTime(cell(colTimestamp)),
			Player:    cell(colPlayer),
			Latitude:  parseFloat(cell(colLatitude)),
			Longitude: parseFloat(cell(colLongitude)),
			AccelX:    parseFloat(cell(colAccelX)),
			AccelY:    parseFloat(cell(colAccelY)),
			AccelZ:    parseFloat(cell(colAccelZ)),
		})
	}

	return samples, nil
}

// parseTime tries the known layouts in turn, then time-of-day layouts anchored to
// 1970-01-01, then Unix seconds. It returns the zero time when nothing matches.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.AddDate(1970, 0, 0).UTC()
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(secs) && !math.IsInf(secs, 0) {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC()
	}
	return time.Time{}
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
