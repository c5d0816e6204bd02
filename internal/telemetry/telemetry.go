package telemetry

import (
	"math"
	"time"
)

// Source yields a recorded sample sequence in collection order
type Source interface {
	Samples() ([]Sample, error)
}

// Sample is one player tracking record from a GPS/IMU vest
type Sample struct {
	Timestamp time.Time `json:"timestamp"`           // Timestamp of the measurement, zero if missing or unparseable
	Player    string    `json:"player,omitempty"`    // Player label, if the recording carries one
	Latitude  *float64  `json:"latitude,omitempty"`  // GPS latitude in degrees
	Longitude *float64  `json:"longitude,omitempty"` // GPS longitude in degrees
	AccelX    *float64  `json:"accelX,omitempty"`    // X-axis acceleration
	AccelY    *float64  `json:"accelY,omitempty"`    // Y-axis acceleration
	AccelZ    *float64  `json:"accelZ,omitempty"`    // Z-axis acceleration
}

// HasTimestamp reports whether the sample carries a usable point in time.
func (s Sample) HasTimestamp() bool {
	return !s.Timestamp.IsZero()
}

// HasPosition reports whether the sample carries a finite, in-range GPS fix.
func (s Sample) HasPosition() bool {
	if s.Latitude == nil || s.Longitude == nil {
		return false
	}
	lat, lon := *s.Latitude, *s.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// HasAccel reports whether all three accelerometer axes are present.
func (s Sample) HasAccel() bool {
	return finite(s.AccelX) && finite(s.AccelY) && finite(s.AccelZ)
}

// AccelMagnitude returns the total acceleration vector length, nil if any axis is
// missing or the length overflows.
func (s Sample) AccelMagnitude() *float64 {
	if !s.HasAccel() {
		return nil
	}
	m := math.Hypot(math.Hypot(*s.AccelX, *s.AccelY), *s.AccelZ)
	if math.IsInf(m, 0) {
		return nil
	}
	return &m
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v, convenient when building samples by hand.
func Float(v float64) *float64 {
	return &v
}
