package storage

import (
	"context"
	"errors"

	"github.com/roman-kulish/pitch-telemetry/internal/metrics"
	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// ErrSessionNotFound is returned when a session ID does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrTimestampOutOfRange is returned when a sample timestamp cannot be stored as
// Unix nanoseconds.
var ErrTimestampOutOfRange = errors.New("timestamp out of range")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store persists analysis sessions, the raw samples they were computed from and
// their metrics summaries. Implementations are safe for concurrent use.
type Store interface {
	// CreateSession records a new analysis session and returns its ID.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - player: Player label, may be empty
	//   - source: Where the samples came from, e.g. the input file path
	//   - config: Optional analysis configuration. Can be string, []byte, or JSON-serializable object
	CreateSession(ctx context.Context, player, source string, config any) (sessionID int64, err error)

	// Session returns the session with the given ID, or ErrSessionNotFound.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns every session ordered by creation time.
	Sessions(ctx context.Context) ([]*Session, error)

	// StoreSamples appends samples to a session in collection order. All samples
	// are written in a single transaction using batched multi-row inserts.
	StoreSamples(ctx context.Context, sessionID int64, samples []telemetry.Sample) error

	// StoreSummary saves the summary of a session, replacing a previous one.
	StoreSummary(ctx context.Context, sessionID int64, thresholds metrics.Thresholds, summary *metrics.Summary) error

	// Summary returns the stored summary of a session, or ErrSessionNotFound when
	// none has been stored.
	Summary(ctx context.Context, sessionID int64) (*SessionSummary, error)

	// ReadSamples opens an iterator over the samples of a session in collection
	// order. The reader must be closed after use.
	ReadSamples(ctx context.Context, sessionID int64, opts ...ReaderOption) (SampleReader, error)

	// Close releases all database connections. It is safe to call Close multiple
	// times.
	Close() error
}
