package cover

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Sun is the apparent sun position seen from a site, in degrees.
// Azimuth is measured clockwise from north; elevation above the horizon.
type Sun struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// SunPosition computes the sun position for a site at time t.
//
// suncalc reports radians with azimuth measured from south towards west;
// the result is converted to compass degrees. Atmospheric refraction is
// ignored, which is well inside the tolerance of a cover position.
func SunPosition(lat, lon float64, t time.Time) Sun {
	p := suncalc.GetPosition(t, lat, lon)

	azimuth := math.Mod(deg(p.Azimuth)+180, 360)
	if azimuth < 0 {
		azimuth += 360
	}
	return Sun{Azimuth: azimuth, Elevation: deg(p.Altitude)}
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
