// Package profile implements per-edge scalar attribute zones: surface,
// noise, width, and speed limit, evaluated as first-match-wins
// half-open intervals over the edge's local arc length.
package profile

import (
	"fmt"
	"math"
)

// SurfaceZone overrides the default surface over [StartS, EndS).
type SurfaceZone struct {
	StartS, EndS float64
	Surface      string
}

// NoiseZone overrides the default noise over [StartS, EndS).
type NoiseZone struct {
	StartS, EndS float64
	Noise        string
}

// WidthZone overrides the default width and shoulders over [StartS, EndS).
type WidthZone struct {
	StartS, EndS              float64
	Width                     float64
	ShoulderLeft, ShoulderRight float64
}

// SpeedZone caps the maximum speed over [StartS, EndS).
type SpeedZone struct {
	StartS, EndS float64
	MaxSpeedKPH  float64
}

// Marker is a named point cue at a local offset.
type Marker struct {
	Name       string
	PositionS  float64
}

// Profile holds an edge's defaults and zone lists.
type Profile struct {
	DefaultSurface string
	DefaultNoise   string
	DefaultWidth   float64
	DefaultWeather string
	DefaultAmbience string

	SurfaceZones []SurfaceZone
	NoiseZones   []NoiseZone
	WidthZones   []WidthZone
	SpeedZones   []SpeedZone
	Markers      []Marker
}

// Validate checks the profile-level invariants: a positive default
// width, and well-formed zones (end ≥ start, all scalars finite,
// positive width/speed values).
func (p Profile) Validate() error {
	if p.DefaultWidth <= 0 {
		return fmt.Errorf("profile: default width must be positive, got %f", p.DefaultWidth)
	}
	for i, z := range p.SurfaceZones {
		if err := checkRange(z.StartS, z.EndS); err != nil {
			return fmt.Errorf("profile: surface zone %d: %w", i, err)
		}
	}
	for i, z := range p.NoiseZones {
		if err := checkRange(z.StartS, z.EndS); err != nil {
			return fmt.Errorf("profile: noise zone %d: %w", i, err)
		}
	}
	for i, z := range p.WidthZones {
		if err := checkRange(z.StartS, z.EndS); err != nil {
			return fmt.Errorf("profile: width zone %d: %w", i, err)
		}
		if !isFinite(z.Width) || z.Width <= 0 {
			return fmt.Errorf("profile: width zone %d: width must be positive, got %f", i, z.Width)
		}
		if !isFinite(z.ShoulderLeft) || !isFinite(z.ShoulderRight) {
			return fmt.Errorf("profile: width zone %d: shoulders must be finite", i)
		}
	}
	for i, z := range p.SpeedZones {
		if err := checkRange(z.StartS, z.EndS); err != nil {
			return fmt.Errorf("profile: speed zone %d: %w", i, err)
		}
		if !isFinite(z.MaxSpeedKPH) || z.MaxSpeedKPH <= 0 {
			return fmt.Errorf("profile: speed zone %d: max speed must be positive, got %f", i, z.MaxSpeedKPH)
		}
	}
	return nil
}

func checkRange(start, end float64) error {
	if !isFinite(start) || !isFinite(end) {
		return fmt.Errorf("non-finite bound [%f, %f)", start, end)
	}
	if end < start {
		return fmt.Errorf("end %f < start %f", end, start)
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// inHalfOpen reports whether s falls in [start, end).
func inHalfOpen(s, start, end float64) bool {
	return s >= start && s < end
}

// SurfaceAt returns the first matching surface zone's value, else the
// default.
func (p Profile) SurfaceAt(s float64) string {
	for _, z := range p.SurfaceZones {
		if inHalfOpen(s, z.StartS, z.EndS) {
			return z.Surface
		}
	}
	return p.DefaultSurface
}

// NoiseAt returns the first matching noise zone's value, else the
// default.
func (p Profile) NoiseAt(s float64) string {
	for _, z := range p.NoiseZones {
		if inHalfOpen(s, z.StartS, z.EndS) {
			return z.Noise
		}
	}
	return p.DefaultNoise
}

// WidthAt returns the first matching width zone's width, else the
// default width.
func (p Profile) WidthAt(s float64) float64 {
	for _, z := range p.WidthZones {
		if inHalfOpen(s, z.StartS, z.EndS) {
			return z.Width
		}
	}
	return p.DefaultWidth
}

// TryWidthZoneAt returns the first matching width zone (for shoulder
// lookups) and whether one matched.
func (p Profile) TryWidthZoneAt(s float64) (WidthZone, bool) {
	for _, z := range p.WidthZones {
		if inHalfOpen(s, z.StartS, z.EndS) {
			return z, true
		}
	}
	return WidthZone{}, false
}

// TrySpeedLimit returns the first matching speed zone's cap and true,
// or false if no zone matches (no speed limit applies).
func (p Profile) TrySpeedLimit(s float64) (float64, bool) {
	for _, z := range p.SpeedZones {
		if inHalfOpen(s, z.StartS, z.EndS) {
			return z.MaxSpeedKPH, true
		}
	}
	return 0, false
}
