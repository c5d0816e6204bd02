package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds, e.Thresholds())
	assert.Equal(t, OrderAsGiven, e.Ordering())
}

func TestNewEngine_RejectsInvalidConfiguration(t *testing.T) {
	_, err := NewEngine(WithThresholds(Thresholds{HighSpeedMps: -5}))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewEngine(WithOrdering("backwards"))
	assert.ErrorIs(t, err, ErrInvalidOrdering)
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in      string
		want    Ordering
		wantErr bool
	}{
		{in: "", want: OrderAsGiven},
		{in: "as-given", want: OrderAsGiven},
		{in: "sort", want: OrderSort},
		{in: "reject", want: OrderReject},
		{in: "Sort", wantErr: true},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOrdering(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidOrdering, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func shuffledTrack() []telemetry.Sample {
	return []telemetry.Sample{
		fix(0, 0, 0),
		fix(20*time.Second, 0.0002, 0),
		fix(10*time.Second, 0.0001, 0),
		fix(30*time.Second, 0.0003, 0),
	}
}

func TestEngine_Compute_OrderingPolicies(t *testing.T) {
	t.Run("as given clamps the backwards step", func(t *testing.T) {
		e, err := NewEngine()
		require.NoError(t, err)

		report, err := e.Compute(shuffledTrack())
		require.NoError(t, err)
		require.Len(t, report.Samples, 3)
		assert.Equal(t, MinTimeDelta, report.Samples[1].TimeDeltaS)
		assert.Greater(t, report.Summary.MaxSpeedKmh, 1000.0)
	})

	t.Run("sort pairs samples chronologically", func(t *testing.T) {
		e, err := NewEngine(WithOrdering(OrderSort))
		require.NoError(t, err)

		report, err := e.Compute(shuffledTrack())
		require.NoError(t, err)
		require.Len(t, report.Samples, 3)
		for _, s := range report.Samples {
			assert.Equal(t, 10.0, s.TimeDeltaS)
			assert.InDelta(t, 1.112, s.SpeedMps, 0.001)
		}
	})

	t.Run("sort keeps duplicate timestamps in collection order", func(t *testing.T) {
		e, err := NewEngine(WithOrdering(OrderSort))
		require.NoError(t, err)

		samples := []telemetry.Sample{
			fix(10*time.Second, 0.0002, 0),
			fix(0, 0, 0),
			fix(10*time.Second, 0.0001, 0),
		}
		report, err := e.Compute(samples)
		require.NoError(t, err)
		require.Len(t, report.Samples, 2)
		assert.Equal(t, 0.0002, *report.Samples[0].Latitude)
		assert.Equal(t, 0.0001, *report.Samples[1].Latitude)
	})

	t.Run("reject fails on a backwards timestamp", func(t *testing.T) {
		e, err := NewEngine(WithOrdering(OrderReject))
		require.NoError(t, err)

		_, err = e.Compute(shuffledTrack())
		assert.ErrorIs(t, err, ErrNonMonotonic)
	})

	t.Run("reject accepts duplicates", func(t *testing.T) {
		e, err := NewEngine(WithOrdering(OrderReject))
		require.NoError(t, err)

		report, err := e.Compute([]telemetry.Sample{fix(0, 0, 0), fix(0, 0.0001, 0), fix(time.Second, 0.0002, 0)})
		require.NoError(t, err)
		assert.Len(t, report.Samples, 2)
	})
}

func TestEngine_Compute_DoesNotReorderInput(t *testing.T) {
	e, err := NewEngine(WithOrdering(OrderSort))
	require.NoError(t, err)

	samples := shuffledTrack()
	_, err = e.Compute(samples)
	require.NoError(t, err)
	assert.Equal(t, shuffledTrack(), samples)
}

func TestEngine_Compute_AccelerometerOnly(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	samples := []telemetry.Sample{
		{Timestamp: baseTime, AccelX: telemetry.Float(0.1), AccelY: telemetry.Float(0.2), AccelZ: telemetry.Float(9.8)},
		{Timestamp: baseTime.Add(time.Second), AccelX: telemetry.Float(0.3), AccelY: telemetry.Float(0.1), AccelZ: telemetry.Float(9.7)},
	}

	report, err := e.Compute(samples)
	require.NoError(t, err)
	assert.Empty(t, report.Samples)
	assert.Zero(t, report.Summary.TotalDistanceKm)
	assert.Zero(t, report.Summary.SprintCount)
	require.NotNil(t, report.Summary.Accelerometer)
	assert.Equal(t, 2, report.Summary.Accelerometer.X.Count)
}

func TestEngine_Compute_ConcurrentCallsAgree(t *testing.T) {
	e, err := NewEngine(WithThresholds(Thresholds{HighSpeedMps: 5, SprintMps: 7, AccelerationMps2: 2}))
	require.NoError(t, err)

	samples := shuffledTrack()
	want, err := e.Compute(samples)
	require.NoError(t, err)

	var wg sync.WaitGroup
	reports := make([]*Report, 8)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = e.Compute(samples)
		}(i)
	}
	wg.Wait()

	for i, got := range reports {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("report %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
