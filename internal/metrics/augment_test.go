package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/pitch-telemetry/internal/telemetry"
)

var baseTime = time.Date(2024, 5, 11, 19, 0, 0, 0, time.UTC)

func fix(offset time.Duration, lat, lon float64) telemetry.Sample {
	return telemetry.Sample{
		Timestamp: baseTime.Add(offset),
		Latitude:  telemetry.Float(lat),
		Longitude: telemetry.Float(lon),
	}
}

func TestAugment_StraightLineConstantSpeed(t *testing.T) {
	samples := []telemetry.Sample{
		fix(0, 0, 0),
		fix(10*time.Second, 0.0001, 0),
		fix(20*time.Second, 0.0002, 0),
	}

	got := Augment(samples)
	require.Len(t, got, 2)

	assert.InDelta(t, 11.119, got[0].DistanceM, 0.001)
	assert.Equal(t, 10.0, got[0].TimeDeltaS)
	assert.InDelta(t, got[0].SpeedMps, got[1].SpeedMps, 1e-9)
	assert.Zero(t, got[0].AccelerationMps2)
	assert.InDelta(t, 0, got[1].AccelerationMps2, 1e-9)

	// rows carry the later sample of each pair
	assert.Equal(t, samples[1].Timestamp, got[0].Timestamp)
	assert.Equal(t, samples[2].Timestamp, got[1].Timestamp)
}

func TestAugment_AccelerationIsSpeedDifference(t *testing.T) {
	samples := []telemetry.Sample{
		fix(0, 0, 0),
		fix(time.Second, 0.00001, 0),
		fix(2*time.Second, 0.00005, 0),
		fix(3*time.Second, 0.00006, 0),
	}

	got := Augment(samples)
	require.Len(t, got, 3)

	assert.Zero(t, got[0].AccelerationMps2)
	assert.InDelta(t, got[1].SpeedMps-got[0].SpeedMps, got[1].AccelerationMps2, 1e-12)
	assert.InDelta(t, got[2].SpeedMps-got[1].SpeedMps, got[2].AccelerationMps2, 1e-12)
	assert.Greater(t, got[1].AccelerationMps2, 0.0)
	assert.Less(t, got[2].AccelerationMps2, 0.0)
}

func TestAugment_DropsIncompleteSamplesBeforePairing(t *testing.T) {
	noPosition := telemetry.Sample{Timestamp: baseTime.Add(5 * time.Second)}
	noTime := telemetry.Sample{Latitude: telemetry.Float(1), Longitude: telemetry.Float(1)}
	halfPosition := telemetry.Sample{Timestamp: baseTime.Add(6 * time.Second), Latitude: telemetry.Float(0.5)}
	outOfRange := fix(7*time.Second, 91, 0)

	complete := []telemetry.Sample{
		fix(0, 0, 0),
		fix(10*time.Second, 0.0001, 0),
		fix(20*time.Second, 0.0002, 0),
	}
	mixed := []telemetry.Sample{
		complete[0], noPosition, noTime, halfPosition, outOfRange,
		complete[1], noPosition,
		complete[2],
	}

	assert.Equal(t, Augment(complete), Augment(mixed))
}

func TestAugment_ClampsDuplicateAndBackwardTimestamps(t *testing.T) {
	samples := []telemetry.Sample{
		fix(0, 0, 0),
		fix(0, 0.00001, 0),
		fix(-time.Second, 0.00002, 0),
	}

	got := Augment(samples)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, MinTimeDelta, a.TimeDeltaS)
		assert.InDelta(t, a.DistanceM/MinTimeDelta, a.SpeedMps, 1e-9)
	}
}

func TestAugment_DegenerateInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []telemetry.Sample
	}{
		{name: "nil", samples: nil},
		{name: "single", samples: []telemetry.Sample{fix(0, 0, 0)}},
		{name: "single usable", samples: []telemetry.Sample{fix(0, 0, 0), {Timestamp: baseTime}}},
		{name: "accelerometer only", samples: []telemetry.Sample{
			{Timestamp: baseTime, AccelX: telemetry.Float(1), AccelY: telemetry.Float(0), AccelZ: telemetry.Float(9.8)},
			{Timestamp: baseTime.Add(time.Second), AccelX: telemetry.Float(2), AccelY: telemetry.Float(0), AccelZ: telemetry.Float(9.8)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Augment(tt.samples)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestAugment_DoesNotModifyInput(t *testing.T) {
	samples := []telemetry.Sample{
		fix(20*time.Second, 0.0002, 0),
		fix(0, 0, 0),
		{Timestamp: baseTime},
		fix(10*time.Second, 0.0001, 0),
	}
	snapshot := make([]telemetry.Sample, len(samples))
	copy(snapshot, samples)

	_ = Augment(samples)
	assert.Equal(t, snapshot, samples)
}

func TestAugment_AccelMagnitude(t *testing.T) {
	withAccel := fix(time.Second, 0.00001, 0)
	withAccel.AccelX = telemetry.Float(3)
	withAccel.AccelY = telemetry.Float(4)
	withAccel.AccelZ = telemetry.Float(0)

	partial := fix(2*time.Second, 0.00002, 0)
	partial.AccelX = telemetry.Float(3)

	got := Augment([]telemetry.Sample{fix(0, 0, 0), withAccel, partial})
	require.Len(t, got, 2)
	require.NotNil(t, got[0].AccelMagnitude)
	assert.Equal(t, 5.0, *got[0].AccelMagnitude)
	assert.Nil(t, got[1].AccelMagnitude)
}
