// Package layout provides the TrackLayout facade: route-coordinate
// queries over a resolved graph's merged zones, plus the derived
// primary GeometrySpec the controller treats as a flat span array.
package layout

import (
	"fmt"

	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/profile"
	"github.com/diamondStar35/top-speed-sub005/internal/track/route"
)

// Metadata carries descriptive, non-functional layout information.
type Metadata struct {
	Name    string
	Author  string
	Version string
	Tags    []string
}

// Weather and Ambience mirror the legacy file's discrete values.
type Weather int

const (
	Sunny Weather = iota
	Rain
	Wind
	Storm
)

type Ambience int

const (
	NoAmbience Ambience = iota
	Desert
	Airport
)

// StartFinishSubgraph names a start/finish line location by edge index
// and local offset, used by the external race-management collaborator.
type StartFinishSubgraph struct {
	Name      string
	EdgeIndex int
	LocalS    float64
}

// TrackLayout combines a resolved route's geometry, zones, and markers
// under a single route-s coordinate, plus descriptive metadata.
type TrackLayout struct {
	Metadata             Metadata
	Weather              Weather
	Ambience             Ambience
	DefaultSurface       string
	DefaultNoise         string
	DefaultWidthMeters   float64
	StartFinishSubgraphs []StartFinishSubgraph

	resolved *route.Resolved
	geomSpec geometry.Spec
	built    *geometry.Built
}

// New builds a TrackLayout from a graph and its defaults. It fails
// fast on a non-positive default width, a nil geometry spec (no
// spans), or a primary route resolving to zero edges.
func New(g *route.Graph, weather Weather, ambience Ambience, defaultSurface, defaultNoise string, defaultWidthMeters float64, meta Metadata, startFinish []StartFinishSubgraph) (*TrackLayout, error) {
	if defaultWidthMeters <= 0 {
		return nil, fmt.Errorf("layout: default width must be positive, got %f", defaultWidthMeters)
	}
	resolved, err := route.Resolve(g)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(resolved.Edges) == 0 {
		return nil, fmt.Errorf("layout: primary route resolves to zero edges")
	}

	var spans []geometry.Span
	for _, e := range resolved.Edges {
		spans = append(spans, e.Spec.Spans...)
	}
	spacing := resolved.Edges[0].Spec.SampleSpacingMeters
	geomSpec := geometry.Spec{Spans: spans, SampleSpacingMeters: spacing, IsLoop: g.IsLoop}
	built, err := geometry.Build(geomSpec)
	if err != nil {
		return nil, fmt.Errorf("layout: primary geometry: %w", err)
	}

	return &TrackLayout{
		Metadata: meta, Weather: weather, Ambience: ambience,
		DefaultSurface: defaultSurface, DefaultNoise: defaultNoise, DefaultWidthMeters: defaultWidthMeters,
		StartFinishSubgraphs: startFinish,
		resolved:             resolved,
		geomSpec:             geomSpec,
		built:                built,
	}, nil
}

// PrimaryRouteLengthMeters returns the primary route's total length.
func (l *TrackLayout) PrimaryRouteLengthMeters() float64 {
	return l.resolved.TotalLengthMeters()
}

// IsLoop reports whether the primary route is a closed loop.
func (l *TrackLayout) IsLoop() bool {
	return l.resolved.Graph.IsLoop
}

// GeometrySpec returns the derived primary route geometry spec, a flat
// span array spanning every edge in route order.
func (l *TrackLayout) GeometrySpec() geometry.Spec {
	return l.geomSpec
}

// BuiltGeometry returns the built primary geometry for pose sampling.
func (l *TrackLayout) BuiltGeometry() *geometry.Built {
	return l.built
}

// ResolvePrimaryEdge resolves route-s to (edge index, local-s).
func (l *TrackLayout) ResolvePrimaryEdge(s float64) (edgeIndex int, localS float64) {
	return l.resolved.ResolvePrimaryEdge(s)
}

// ResolvePrimaryEdgeBounds returns the [start, end) route-s bounds of
// edge index i.
func (l *TrackLayout) ResolvePrimaryEdgeBounds(i int) (start, end float64) {
	return l.resolved.ResolvePrimaryEdgeBounds(i)
}

// EdgeAt returns the resolved route's edge at index i.
func (l *TrackLayout) EdgeAt(i int) *route.Edge {
	if i < 0 || i >= len(l.resolved.Edges) {
		return nil
	}
	return l.resolved.Edges[i]
}

// EdgeCount returns the number of edges in the primary route.
func (l *TrackLayout) EdgeCount() int {
	return len(l.resolved.Edges)
}

// routeS wraps s modulo the route length on loops and clamps it to
// [0, length] on open routes, exactly as ResolvePrimaryEdge does.
func (l *TrackLayout) routeS(s float64) float64 {
	i, local := l.resolved.ResolvePrimaryEdge(s)
	return l.resolved.EdgeStart[i] + local
}

func firstMatch[T any](zones []route.RouteZone[T], s float64, def T) T {
	for _, z := range zones {
		if s >= z.StartS && s < z.EndS {
			return z.Value
		}
	}
	return def
}

// SurfaceAt returns the first matching surface zone in route-s order,
// else the layout default.
func (l *TrackLayout) SurfaceAt(s float64) string {
	return firstMatch(l.resolved.SurfaceZones, l.routeS(s), l.DefaultSurface)
}

// NoiseAt returns the first matching noise zone in route-s order, else
// the layout default.
func (l *TrackLayout) NoiseAt(s float64) string {
	return firstMatch(l.resolved.NoiseZones, l.routeS(s), l.DefaultNoise)
}

// WidthAt returns the first matching width zone's width, else the
// layout default width.
func (l *TrackLayout) WidthAt(s float64) float64 {
	s = l.routeS(s)
	for _, z := range l.resolved.WidthZones {
		if s >= z.StartS && s < z.EndS {
			return z.Value.Width
		}
	}
	return l.DefaultWidthMeters
}

// TrySpeedLimit returns the first matching speed zone's cap and true,
// or false if no zone applies.
func (l *TrackLayout) TrySpeedLimit(s float64) (float64, bool) {
	s = l.routeS(s)
	for _, z := range l.resolved.SpeedZones {
		if s >= z.StartS && s < z.EndS {
			return z.Value, true
		}
	}
	return 0, false
}

// SurfaceZones returns every surface zone in route-s coordinates.
func (l *TrackLayout) SurfaceZones() []route.RouteZone[string] { return l.resolved.SurfaceZones }

// NoiseZones returns every noise zone in route-s coordinates.
func (l *TrackLayout) NoiseZones() []route.RouteZone[string] { return l.resolved.NoiseZones }

// WidthZones returns every width zone in route-s coordinates.
func (l *TrackLayout) WidthZones() []route.RouteZone[profile.WidthZone] { return l.resolved.WidthZones }

// SpeedZones returns every speed zone in route-s coordinates.
func (l *TrackLayout) SpeedZones() []route.RouteZone[float64] { return l.resolved.SpeedZones }

// Markers returns every marker in route-s coordinates.
func (l *TrackLayout) Markers() []route.RouteMarker { return l.resolved.Markers }
