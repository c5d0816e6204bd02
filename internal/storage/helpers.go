package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rErr := rb.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) && *err == nil {
		*err = rErr
	}
}

func toSQLNullType[T float64 | int64, Y float64 | int | int64](f *Y) T {
	if f == nil {
		return 0
	}
	return T(*f)
}

func toNullFloat64(f *float64) sql.NullFloat64 {
	return sql.NullFloat64{
		Float64: toSQLNullType[float64](f),
		Valid:   f != nil,
	}
}

func fromNullFloat64(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// Timestamps are stored as Unix nanoseconds, which cover 1677-09-21 to 2262-04-11.
var (
	minStorableTime = time.Unix(0, math.MinInt64).UTC()
	maxStorableTime = time.Unix(0, math.MaxInt64).UTC()
)

func storableTime(t time.Time) bool {
	return !t.Before(minStorableTime) && !t.After(maxStorableTime)
}

func toSampleData(sessionID, seq int64, s *telemetry.Sample) (*sampleData, error) {
	var ts sql.NullInt64
	if s.HasTimestamp() {
		if !storableTime(s.Timestamp) {
			return nil, fmt.Errorf("sample %d: %w: %s", seq, ErrTimestampOutOfRange, s.Timestamp.Format(time.RFC3339Nano))
		}
		ts.Int64 = s.Timestamp.UnixNano()
		ts.Valid = true
	}

	return &sampleData{
		SessionID: sessionID,
		Seq:       seq,
		Timestamp: ts,
		Player:    s.Player,
		Latitude:  toNullFloat64(s.Latitude),
		Longitude: toNullFloat64(s.Longitude),
		AccelX:    toNullFloat64(s.AccelX),
		AccelY:    toNullFloat64(s.AccelY),
		AccelZ:    toNullFloat64(s.AccelZ),
	}, nil
}

func (d *sampleData) sample() telemetry.Sample {
	s := telemetry.Sample{
		Player:    d.Player,
		Latitude:  fromNullFloat64(d.Latitude),
		Longitude: fromNullFloat64(d.Longitude),
		AccelX:    fromNullFloat64(d.AccelX),
		AccelY:    fromNullFloat64(d.AccelY),
		AccelZ:    fromNullFloat64(d.AccelZ),
	}
	if d.Timestamp.Valid {
		s.Timestamp = time.Unix(0, d.Timestamp.Int64).UTC()
	}
	return s
}

func toSummaryData(sessionID int64, t metrics.Thresholds, s *metrics.Summary) (*summaryData, error) {
	var accel sql.NullString
	if s.Accelerometer != nil {
		p, err := json.Marshal(s.Accelerometer)
		if err != nil {
			return nil, fmt.Errorf("marshaling accelerometer stats: %w", err)
		}
		accel.String = string(p)
		accel.Valid = true
	}

	return &summaryData{
		SessionID:             sessionID,
		HighSpeedMps:          t.HighSpeedMps,
		SprintMps:             t.SprintMps,
		AccelerationMps2:      t.AccelerationMps2,
		SampleCount:           int64(s.SampleCount),
		DurationS:             s.DurationS,
		TotalDistanceKm:       s.TotalDistanceKm,
		HighSpeedDistanceKm:   s.HighSpeedDistanceKm,
		AverageSpeedKmh:       s.AverageSpeedKmh,
		MaxSpeedKmh:           s.MaxSpeedKmh,
		SprintCount:           int64(s.SprintCount),
		HighAccelerationCount: int64(s.HighAccelerationCount),
		HighDecelerationCount: int64(s.HighDecelerationCount),
		Accelerometer:         accel,
	}, nil
}

func (d *summaryData) sessionSummary() (*SessionSummary, error) {
	ss := SessionSummary{
		SessionID: d.SessionID,
		Thresholds: metrics.Thresholds{
			HighSpeedMps:     d.HighSpeedMps,
			SprintMps:        d.SprintMps,
			AccelerationMps2: d.AccelerationMps2,
		},
		Summary: metrics.Summary{
			SampleCount:           int(d.SampleCount),
			DurationS:             d.DurationS,
			TotalDistanceKm:       d.TotalDistanceKm,
			HighSpeedDistanceKm:   d.HighSpeedDistanceKm,
			AverageSpeedKmh:       d.AverageSpeedKmh,
			MaxSpeedKmh:           d.MaxSpeedKmh,
			SprintCount:           int(d.SprintCount),
			HighAccelerationCount: int(d.HighAccelerationCount),
			HighDecelerationCount: int(d.HighDecelerationCount),
		},
	}
	if d.Accelerometer.Valid {
		var accel metrics.AccelStats
		if err := json.Unmarshal([]byte(d.Accelerometer.String), &accel); err != nil {
			return nil, fmt.Errorf("unmarshaling accelerometer stats: %w", err)
		}
		ss.Summary.Accelerometer = &accel
	}
	return &ss, nil
}
