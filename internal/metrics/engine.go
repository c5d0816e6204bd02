package metrics

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

// Ordering selects how Engine treats timestamps that do not increase.
type Ordering string

const (
	OrderAsGiven Ordering = "as-given" // Pair samples in collection order, clamping bad time deltas
	OrderSort    Ordering = "sort"     // Stable sort usable samples by timestamp before pairing
	OrderReject  Ordering = "reject"   // Fail with ErrNonMonotonic when a timestamp goes backwards
)

var (
	// ErrNonMonotonic is returned under OrderReject when a usable sample is older
	// than its predecessor.
	ErrNonMonotonic = errors.New("timestamps are not monotonic")

	// ErrInvalidOrdering is returned for an unknown ordering policy.
	ErrInvalidOrdering = errors.New("invalid ordering")
)

var validOrderings = map[Ordering]struct{}{
	OrderAsGiven: {},
	OrderSort:    {},
	OrderReject:  {},
}

// ParseOrdering validates an ordering name. An empty name selects OrderAsGiven.
func ParseOrdering(s string) (Ordering, error) {
	if s == "" {
		return OrderAsGiven, nil
	}
	o := Ordering(s)
	if _, ok := validOrderings[o]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidOrdering)
	}
	return o, nil
}

// WithThresholds sets the thresholds used by Engine.Compute.
func WithThresholds(t Thresholds) func(*Engine) {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithOrdering sets the timestamp ordering policy.
func WithOrdering(o Ordering) func(*Engine) {
	return func(e *Engine) {
		e.ordering = o
	}
}

// Report is everything the display layer needs for one recording.
type Report struct {
	Thresholds Thresholds        `json:"thresholds"`
	Summary    Summary           `json:"summary"`
	Samples    []AugmentedSample `json:"samples"`
}

// Engine runs the metrics pipeline with a fixed configuration. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	ordering   Ordering
}

// NewEngine creates an Engine with DefaultThresholds and OrderAsGiven unless
// overridden by options.
func NewEngine(options ...func(*Engine)) (*Engine, error) {
	e := Engine{
		thresholds: DefaultThresholds,
		ordering:   OrderAsGiven,
	}
	for _, option := range options {
		option(&e)
	}

	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	if _, ok := validOrderings[e.ordering]; !ok {
		return nil, fmt.Errorf("%q: %w", e.ordering, ErrInvalidOrdering)
	}
	return &e, nil
}

// Thresholds returns the configured thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Ordering returns the configured ordering policy.
func (e *Engine) Ordering() Ordering {
	return e.ordering
}

// Compute filters, orders and augments samples, then summarizes them. Accelerometer
// statistics are taken over every sample, including those without a GPS fix.
func (e *Engine) Compute(samples []telemetry.Sample) (*Report, error) {
	usable, err := e.order(Usable(samples))
	if err != nil {
		return nil, err
	}

	augmented := augmentUsable(usable)
	summary, err := Summarize(augmented, e.thresholds)
	if err != nil {
		return nil, err
	}
	summary.Accelerometer = DescribeAccel(samples)

	return &Report{
		Thresholds: e.thresholds,
		Summary:    summary,
		Samples:    augmented,
	}, nil
}

func (e *Engine) order(usable []telemetry.Sample) ([]telemetry.Sample, error) {
	switch e.ordering {
	case OrderSort:
		slices.SortStableFunc(usable, func(a, b telemetry.Sample) int {
			return a.Timestamp.Compare(b.Timestamp)
		})

	case OrderReject:
		for i := 1; i < len(usable); i++ {
			if usable[i].Timestamp.Before(usable[i-1].Timestamp) {
				return nil, fmt.Errorf("usable sample %d at %s precedes %s: %w",
					i, usable[i].Timestamp.Format("15:04:05.000"), usable[i-1].Timestamp.Format("15:04:05.000"), ErrNonMonotonic)
			}
		}
	}
	return usable, nil
}
