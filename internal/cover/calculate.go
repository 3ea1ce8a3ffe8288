package cover

import "math"

// Result is the outcome of one cover calculation.
type Result struct {
	// Position is 0 (closed) to 100 (open).
	Position int `json:"position"`

	// SunInWindow reports whether the sun is in front of the window and
	// inside the configured elevation limits.
	SunInWindow bool `json:"sun_in_window"`

	// Gamma is the horizontal angle between window normal and sun (degrees).
	Gamma float64 `json:"gamma"`

	Sun      Sun     `json:"sun"`
	Distance float64 `json:"distance"`
}

// Calculate returns the cover position for entry e, sun position sun and
// shaded-area distance (metres).
//
// Tilt covers are not distance driven and always return the default position.
func Calculate(e Entry, sun Sun, distance float64) Result {
	opts := e.Options
	res := Result{
		Position: opts.DefaultPosition,
		Gamma:    gamma(opts.WindowAzimuth, sun.Azimuth),
		Sun:      sun,
		Distance: distance,
	}

	res.SunInWindow = sunInWindow(opts, sun, res.Gamma)
	if !res.SunInWindow {
		return res
	}

	switch e.SensorType {
	case SensorTypeBlind:
		res.Position = percentage(verticalHeight(opts, sun, res.Gamma, distance), opts.WindowHeight)
	case SensorTypeAwning:
		if length, ok := awningLength(opts, sun, res.Gamma, distance); ok {
			res.Position = percentage(length, opts.AwningLength)
		}
	}

	return res
}

// gamma normalises window azimuth minus sun azimuth into [-180, 180).
func gamma(windowAzimuth, sunAzimuth float64) float64 {
	g := math.Mod(windowAzimuth-sunAzimuth+180, 360)
	if g < 0 {
		g += 360
	}
	return g - 180
}

// sunInWindow reports whether the sun is above the horizon, inside the
// optional elevation limits and within the field of view.
func sunInWindow(opts Options, sun Sun, g float64) bool {
	if sun.Elevation <= 0 {
		return false
	}
	if opts.MinElevation != nil && sun.Elevation < *opts.MinElevation {
		return false
	}
	if opts.MaxElevation != nil && sun.Elevation > *opts.MaxElevation {
		return false
	}
	return g >= -opts.FOVRight && g <= opts.FOVLeft
}

// verticalHeight is how far the blind may open before sunlight passes the
// shaded-area edge, clamped to the window height.
func verticalHeight(opts Options, sun Sun, g, distance float64) float64 {
	cosG := math.Cos(rad(g))
	if cosG <= 0 {
		return 0
	}
	h := distance / cosG * math.Tan(rad(sun.Elevation))
	return clamp(h, 0, opts.WindowHeight)
}

// awningLength converts the unshaded window height into the awning
// extension needed to cover it. ok is false when the geometry is degenerate.
func awningLength(opts Options, sun Sun, g, distance float64) (length float64, ok bool) {
	if opts.AwningLength <= 0 {
		return 0, false
	}

	awnAngle := 90 - opts.AwningAngle
	aAngle := 90 - sun.Elevation
	cAngle := 180 - awnAngle - aAngle

	sinC := math.Sin(rad(cAngle))
	if math.Abs(sinC) < 1e-9 {
		return 0, false
	}

	vertical := verticalHeight(opts, sun, g, distance)
	length = (opts.WindowHeight - vertical) * math.Sin(rad(aAngle)) / sinC
	return clamp(length, 0, opts.AwningLength), true
}

// percentage maps value in [0, total] to a rounded 0-100 position.
func percentage(value, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(clamp(value/total, 0, 1) * 100))
}
