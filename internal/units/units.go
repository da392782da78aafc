// Package units provides the speed and heading conversions the track
// model needs: speed zones are authored in km/h but surfaced to the
// controller in m/s, and cue heading comparisons need a wrapped delta.
package units

import "math"

// KphToMps converts a speed limit given in kilometres per hour to metres per second.
func KphToMps(kph float64) float64 {
	return kph / 3.6
}

// NormalizeDegrees wraps a heading in degrees into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// HeadingDelta returns the absolute shortest angular difference between two
// headings in degrees, in the range [0, 180].
func HeadingDelta(a, b float64) float64 {
	d := math.Mod(NormalizeDegrees(a)-NormalizeDegrees(b), 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}
