package cover

import "fmt"

// Domain is the integration domain used in device identifiers.
const Domain = "adaptive_cover"

// DefaultDistance is the shaded-area distance (metres) used when neither an
// override nor a configured value exists.
const DefaultDistance = 0.5

// SensorType classifies the cover hardware of an entry.
type SensorType string

// Supported sensor types.
const (
	SensorTypeBlind  SensorType = "cover_blind"
	SensorTypeAwning SensorType = "cover_awning"
	SensorTypeTilt   SensorType = "cover_tilt"
)

// ParseSensorType validates a configured sensor type string.
func ParseSensorType(s string) (SensorType, error) {
	switch t := SensorType(s); t {
	case SensorTypeBlind, SensorTypeAwning, SensorTypeTilt:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSensorType, s)
	}
}

// Options holds the geometry and tuning values of an entry.
// Angles are in degrees, lengths in metres.
type Options struct {
	// Distance is the configured shaded-area distance; nil when not set.
	Distance *float64

	WindowAzimuth float64
	FOVLeft       float64
	FOVRight      float64
	WindowHeight  float64

	// DefaultPosition is used whenever the sun is not in front of the window.
	DefaultPosition int

	MinElevation *float64
	MaxElevation *float64

	AwningLength float64
	AwningAngle  float64
}

// ConfiguredDistance returns the configured distance, or DefaultDistance.
func (o Options) ConfiguredDistance() float64 {
	if o.Distance != nil {
		return *o.Distance
	}
	return DefaultDistance
}

// Entry is one configured cover.
type Entry struct {
	ID         string
	Name       string
	SensorType SensorType
	Options    Options
}

// Site is the geographic location used for sun position calculations.
type Site struct {
	Latitude  float64
	Longitude float64
}
