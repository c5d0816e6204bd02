package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// DefaultMaxBatchSize is the number of sample rows per INSERT statement. Nine
// columns per row keeps the statement under SQLite's default variable limit.
const DefaultMaxBatchSize = 100

var _ Store = (*SqliteStore)(nil)

// StoreOption configures a SqliteStore.
type StoreOption func(*SqliteStore)

// WithMaxBatchSize sets the number of sample rows per INSERT statement.
// Non-positive values are ignored.
func WithMaxBatchSize(n int) StoreOption {
	return func(s *SqliteStore) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath       string
	maxBatchSize int

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore returns a store backed by the SQLite database at dbPath.
// Connections are opened lazily; the schema is migrated on first write.
func NewSqliteStore(dbPath string, opts ...StoreOption) *SqliteStore {
	s := &SqliteStore{
		dbPath:       dbPath,
		maxBatchSize: DefaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database file path.
func (s *SqliteStore) Path() string {
	return s.dbPath
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = migrateUp(db); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	// Make sure the schema exists before the read-only connection looks at it.
	if _, err := s.getWriteDB(); err != nil {
		return nil, err
	}

	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro&_busy_timeout=5000"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, player, source string, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	result, err := db.ExecContext(ctx, insertSessionSQL, uuid.New(), player, source, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var config sql.NullString
	if err := row.Scan(&sess.ID, &sess.RunID, &sess.CreatedAt, &sess.Player, &sess.Source, &config); err != nil {
		return nil, err
	}
	if config.Valid {
		sess.Config = &config.String
	}
	return &sess, nil
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (*Session, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return loadSession(ctx, db, id)
}

func loadSession(ctx context.Context, db *sql.DB, id int64) (*Session, error) {
	sess, err := scanSession(db.QueryRowContext(ctx, selectSessionSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return sess, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess *Session
		if sess, err = scanSession(rows); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, sess)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating sessions: %w", err)
	}
	return
}

func (s *SqliteStore) StoreSamples(ctx context.Context, sessionID int64, samples []telemetry.Sample) (err error) {
	if len(samples) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	var seq int64
	if err = tx.QueryRowContext(ctx, selectNextSeqSQL, sessionID).Scan(&seq); err != nil {
		return fmt.Errorf("querying next sequence number: %w", err)
	}

	for batch := range slices.Chunk(samples, s.maxBatchSize) {
		values := make([]any, 0, len(batch)*9)

		var sb strings.Builder
		sb.WriteString(insertSamplesSQL)

		for i := range batch {
			var data *sampleData
			if data, err = toSampleData(sessionID, seq, &batch[i]); err != nil {
				return err
			}
			seq++

			values = append(values,
				data.SessionID,
				data.Seq,
				data.Timestamp,
				data.Player,
				data.Latitude,
				data.Longitude,
				data.AccelX,
				data.AccelY,
				data.AccelZ,
			)

			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(sampleValuesPlaceholder)
		}

		if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting samples: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) StoreSummary(ctx context.Context, sessionID int64, thresholds metrics.Thresholds, summary *metrics.Summary) error {
	data, err := toSummaryData(sessionID, thresholds, summary)
	if err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	_, err = db.ExecContext(
		ctx,
		upsertSummarySQL,
		data.SessionID,
		data.HighSpeedMps,
		data.SprintMps,
		data.AccelerationMps2,
		data.SampleCount,
		data.DurationS,
		data.TotalDistanceKm,
		data.HighSpeedDistanceKm,
		data.AverageSpeedKmh,
		data.MaxSpeedKmh,
		data.SprintCount,
		data.HighAccelerationCount,
		data.HighDecelerationCount,
		data.Accelerometer,
	)
	if err != nil {
		return fmt.Errorf("storing summary: %w", err)
	}
	return nil
}

func (s *SqliteStore) Summary(ctx context.Context, sessionID int64) (*SessionSummary, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	var data summaryData
	err = db.QueryRowContext(ctx, selectSummarySQL, sessionID).Scan(
		&data.SessionID,
		&data.HighSpeedMps,
		&data.SprintMps,
		&data.AccelerationMps2,
		&data.SampleCount,
		&data.DurationS,
		&data.TotalDistanceKm,
		&data.HighSpeedDistanceKm,
		&data.AverageSpeedKmh,
		&data.MaxSpeedKmh,
		&data.SprintCount,
		&data.HighAccelerationCount,
		&data.HighDecelerationCount,
		&data.Accelerometer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("summary of session %d: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning summary: %w", err)
	}
	return data.sessionSummary()
}

// ReadSamples creates a reader over the samples of a session, in the order they
// were stored. The reader honours time filters set with WithStartTime,
// WithEndTime and WithTimeRange; samples without a timestamp are skipped when a
// time filter is set.
//
// The returned reader must be closed after use to release database resources.
func (s *SqliteStore) ReadSamples(ctx context.Context, sessionID int64, opts ...ReaderOption) (SampleReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteSampleReader(ctx, db, sessionID, opts...)
}

// SchemaVersion returns the applied schema migration version.
func (s *SqliteStore) SchemaVersion() (uint, error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	version, dirty, err := schemaVersion(db)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		var writeErr, readErr error

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
