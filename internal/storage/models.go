package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
)

// Session is one analysed tracking recording.
type Session struct {
	ID        int64
	RunID     uuid.UUID
	CreatedAt time.Time
	Player    string
	Source    string  // where the samples came from, e.g. the input file path
	Config    *string // analysis configuration as stored, usually JSON
}

// SessionSummary is the stored metrics summary of a session together with the
// thresholds it was computed with.
type SessionSummary struct {
	SessionID  int64
	Thresholds metrics.Thresholds
	Summary    metrics.Summary
}

type sampleData struct {
	SessionID int64
	Seq       int64
	Timestamp sql.NullInt64 // Unix nanoseconds
	Player    string
	Latitude  sql.NullFloat64
	Longitude sql.NullFloat64
	AccelX    sql.NullFloat64
	AccelY    sql.NullFloat64
	AccelZ    sql.NullFloat64
}

type summaryData struct {
	SessionID             int64
	HighSpeedMps          float64
	SprintMps             float64
	AccelerationMps2      float64
	SampleCount           int64
	DurationS             float64
	TotalDistanceKm       float64
	HighSpeedDistanceKm   float64
	AverageSpeedKmh       float64
	MaxSpeedKmh           float64
	SprintCount           int64
	HighAccelerationCount int64
	HighDecelerationCount int64
	Accelerometer         sql.NullString
}
