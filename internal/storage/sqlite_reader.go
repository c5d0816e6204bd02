package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// ErrNoData indicates that all available samples have been read.
var ErrNoData = errors.New("no data available")

// SampleReader provides an iterator-based interface for reading the stored
// samples of a session with optional time filtering.
type SampleReader interface {
	// Session returns metadata about the session this reader is accessing.
	Session() *Session

	// Next advances the iterator and returns true if there is another sample
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current sample in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *telemetry.Sample

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish between
	// end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	Close() error
}

// ReaderOption configures a SampleReader with filtering criteria.
type ReaderOption func(*SqliteSampleReader)

// WithStartTime excludes samples with timestamps before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes samples with timestamps after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
// This is a convenience function equivalent to applying both WithStartTime
// and WithEndTime.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

// SqliteSampleReader implements SampleReader for SQLite database backend.
type SqliteSampleReader struct {
	db *sql.DB

	sessionID int64
	session   *Session

	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter

	current *telemetry.Sample
	rows    *sql.Rows
	err     error
}

func newSqliteSampleReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteSampleReader, error) {
	sr := &SqliteSampleReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

func (sr *SqliteSampleReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}
	if sr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "validating filters", fn: sr.initFilters},
		{msg: "loading session", fn: sr.loadSession},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSampleReader) initFilters(context.Context) error {
	if sr.startTime != nil && sr.endTime != nil && sr.startTime.After(*sr.endTime) {
		return fmt.Errorf("start time %s is after end time %s", sr.startTime, sr.endTime)
	}
	return nil
}

func (sr *SqliteSampleReader) loadSession(ctx context.Context) (err error) {
	sr.session, err = loadSession(ctx, sr.db, sr.sessionID)
	return err
}

func (sr *SqliteSampleReader) initQuery(ctx context.Context) (err error) {
	var sb strings.Builder
	sb.WriteString(selectSamplesSQL)

	args := []any{sr.sessionID}
	if sr.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, sr.startTime.UnixNano())
	}
	if sr.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, sr.endTime.UnixNano())
	}
	sb.WriteString(" ORDER BY seq")

	sr.rows, err = sr.db.QueryContext(ctx, sb.String(), args...)
	return err
}

func (sr *SqliteSampleReader) Session() *Session {
	return sr.session
}

func (sr *SqliteSampleReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		sr.err = ctx.Err()
		return false
	default:
	}

	if !sr.rows.Next() {
		sr.err = ErrNoData
		return false
	}

	var data sampleData
	err := sr.rows.Scan(
		&data.Seq,
		&data.Timestamp,
		&data.Player,
		&data.Latitude,
		&data.Longitude,
		&data.AccelX,
		&data.AccelY,
		&data.AccelZ,
	)
	if err != nil {
		sr.err = fmt.Errorf("scanning sample: %w", err)
		return false
	}

	s := data.sample()
	sr.current = &s
	return true
}

func (sr *SqliteSampleReader) Current() *telemetry.Sample {
	return sr.current
}

func (sr *SqliteSampleReader) Error() error {
	if sr.err != nil && !errors.Is(sr.err, ErrNoData) {
		return sr.err
	}
	if sr.rows != nil {
		return sr.rows.Err()
	}
	return nil
}

func (sr *SqliteSampleReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.current = nil
		sr.rows = nil
		return err
	}
	return nil
}

// ReadAll drains r and returns every remaining sample.
func ReadAll(ctx context.Context, r SampleReader) ([]telemetry.Sample, error) {
	var samples []telemetry.Sample
	for r.Next(ctx) {
		samples = append(samples, *r.Current())
	}
	if err := r.Error(); err != nil {
		return nil, err
	}
	return samples, nil
}
