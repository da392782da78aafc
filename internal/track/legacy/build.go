package legacy

import (
	"fmt"

	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
	"github.com/diamondStar35/top-speed-sub005/internal/track/profile"
	"github.com/diamondStar35/top-speed-sub005/internal/track/route"
)

// SurfaceNames maps a legacy surface int (clamped to [0,4]) to the
// named surface profile.Profile expects.
var SurfaceNames = []string{"asphalt", "gravel", "dirt", "ice", "grass"}

// NoiseNames maps a legacy noise int (clamped to [0,11]) to the named
// ambient sound controller.Run recognises.
var NoiseNames = []string{
	"none", "ocean", "clock", "runway", "jet", "thunder", "helicopter", "owl",
	"crowd", "wind", "rain", "birds",
}

func surfaceName(i int) string {
	if i < 0 || i >= len(SurfaceNames) {
		return SurfaceNames[0]
	}
	return SurfaceNames[i]
}

func noiseName(i int) string {
	if i < 0 || i >= len(NoiseNames) {
		return NoiseNames[0]
	}
	return NoiseNames[i]
}

// BuildLayout lays the decoded segments out as a single-edge closed
// loop: one Straight span per segment (the legacy format carries no
// curvature data), with per-segment surface/noise zones and the
// decoded weather/ambience carried straight through — both Result and
// layout.TrackLayout use the same {Sunny,Rain,Wind,Storm} /
// {NoAmbience,Desert,Airport} ordinal ordering by construction.
func (r Result) BuildLayout(defaultWidthMeters float64) (*layout.TrackLayout, error) {
	if len(r.Segments) == 0 {
		return nil, fmt.Errorf("legacy: cannot build a layout with zero segments")
	}

	spans := make([]geometry.Span, len(r.Segments))
	var surfaceZones []profile.SurfaceZone
	var noiseZones []profile.NoiseZone
	cum := 0.0
	for i, seg := range r.Segments {
		spans[i] = geometry.Span{Kind: geometry.Straight, LengthMeters: seg.LengthMeters}
		end := cum + seg.LengthMeters
		surfaceZones = append(surfaceZones, profile.SurfaceZone{StartS: cum, EndS: end, Surface: surfaceName(seg.Surface)})
		if seg.Noise != 0 {
			noiseZones = append(noiseZones, profile.NoiseZone{StartS: cum, EndS: end, Noise: noiseName(seg.Noise)})
		}
		cum = end
	}

	prof := profile.Profile{
		DefaultSurface: surfaceName(0),
		DefaultNoise:   noiseName(0),
		DefaultWidth:   defaultWidthMeters,
		SurfaceZones:   surfaceZones,
		NoiseZones:     noiseZones,
	}

	edge, err := route.NewEdge("legacy", "start", "start", geometry.Spec{
		Spans: spans, SampleSpacingMeters: 2, IsLoop: true,
	}, prof)
	if err != nil {
		return nil, fmt.Errorf("legacy: build edge: %w", err)
	}
	g, err := route.NewGraph([]*route.Edge{edge}, []string{"legacy"}, true)
	if err != nil {
		return nil, fmt.Errorf("legacy: build graph: %w", err)
	}

	name := r.Name
	if name == "" {
		name = "legacy track"
	}
	lay, err := layout.New(g, layout.Weather(r.Weather), layout.Ambience(r.Ambience),
		prof.DefaultSurface, prof.DefaultNoise, defaultWidthMeters,
		layout.Metadata{Name: name}, nil)
	if err != nil {
		return nil, fmt.Errorf("legacy: build layout: %w", err)
	}
	return lay, nil
}
