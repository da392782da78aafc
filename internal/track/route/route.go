// Package route concatenates graph edges into a routed loop (or open
// route) and resolves route-s coordinates down to (edge, local-s),
// rewriting each edge's zones into route-s coordinates in the process.
package route

import (
	"fmt"
	"sort"

	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/profile"
)

// Edge is a graph edge: two portal endpoints, its built geometry, and
// its attribute profile.
type Edge struct {
	ID           string
	FromPortalID string
	ToPortalID   string
	Spec         geometry.Spec
	Built        *geometry.Built
	Profile      profile.Profile
}

// NewEdge builds spec and validates profile, producing a ready Edge.
func NewEdge(id, fromPortalID, toPortalID string, spec geometry.Spec, prof profile.Profile) (*Edge, error) {
	built, err := geometry.Build(spec)
	if err != nil {
		return nil, fmt.Errorf("route: edge %q: %w", id, err)
	}
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("route: edge %q: %w", id, err)
	}
	return &Edge{ID: id, FromPortalID: fromPortalID, ToPortalID: toPortalID, Spec: spec, Built: built, Profile: prof}, nil
}

// LengthMeters is the derived sum of the edge's span lengths.
func (e *Edge) LengthMeters() float64 {
	return e.Built.TotalLengthMeters()
}

// Graph holds every edge by id and the designated primary route
// through a subset of them.
type Graph struct {
	Edges               map[string]*Edge
	PrimaryRouteEdgeIDs []string
	IsLoop              bool
}

// NewGraph validates that consecutive primary-route edges share a
// portal, that a loop's last edge closes back to the first, and that
// the primary route resolves to at least one edge — all construction
// faults per the fail-fast tier.
func NewGraph(edges []*Edge, primaryRouteEdgeIDs []string, isLoop bool) (*Graph, error) {
	if len(primaryRouteEdgeIDs) == 0 {
		return nil, fmt.Errorf("route: primary route resolves to zero edges")
	}
	byID := make(map[string]*Edge, len(edges))
	for _, e := range edges {
		byID[e.ID] = e
	}

	var ordered []*Edge
	for _, id := range primaryRouteEdgeIDs {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("route: primary route references unknown edge %q", id)
		}
		ordered = append(ordered, e)
	}
	for i := 0; i+1 < len(ordered); i++ {
		if ordered[i].ToPortalID != ordered[i+1].FromPortalID {
			return nil, fmt.Errorf("route: edge %q does not connect to edge %q", ordered[i].ID, ordered[i+1].ID)
		}
	}
	if isLoop {
		first, last := ordered[0], ordered[len(ordered)-1]
		if last.ToPortalID != first.FromPortalID {
			return nil, fmt.Errorf("route: loop closure violated: %q does not return to %q", last.ID, first.ID)
		}
	}

	return &Graph{Edges: byID, PrimaryRouteEdgeIDs: primaryRouteEdgeIDs, IsLoop: isLoop}, nil
}

// RouteZone is a rewritten zone expressed in route-s coordinates,
// tagged with the edge index it originated from.
type RouteZone[T any] struct {
	StartS, EndS float64
	Value        T
	EdgeIndex    int
}

// RouteMarker is a rewritten marker expressed in route-s coordinates.
type RouteMarker struct {
	Name      string
	PositionS float64
	EdgeIndex int
}

// Resolved is a graph's primary route with its cumulative edge-start
// table and route-coordinate zone lists computed once at construction.
type Resolved struct {
	Graph     *Graph
	Edges     []*Edge // ordered per PrimaryRouteEdgeIDs
	EdgeStart []float64 // len(Edges)+1

	SurfaceZones []RouteZone[string]
	NoiseZones   []RouteZone[string]
	WidthZones   []RouteZone[profile.WidthZone]
	SpeedZones   []RouteZone[float64]
	Markers      []RouteMarker
}

// Resolve computes the cumulative edge-start table and rewrites every
// edge's zones into route-s coordinates, preserving per-edge order.
func Resolve(g *Graph) (*Resolved, error) {
	ordered := make([]*Edge, 0, len(g.PrimaryRouteEdgeIDs))
	for _, id := range g.PrimaryRouteEdgeIDs {
		e, ok := g.Edges[id]
		if !ok {
			return nil, fmt.Errorf("route: resolve: unknown edge %q", id)
		}
		ordered = append(ordered, e)
	}

	r := &Resolved{Graph: g, Edges: ordered, EdgeStart: make([]float64, len(ordered)+1)}

	cum := 0.0
	for i, e := range ordered {
		r.EdgeStart[i] = cum
		off := cum

		for _, z := range e.Profile.SurfaceZones {
			r.SurfaceZones = append(r.SurfaceZones, RouteZone[string]{StartS: z.StartS + off, EndS: z.EndS + off, Value: z.Surface, EdgeIndex: i})
		}
		for _, z := range e.Profile.NoiseZones {
			r.NoiseZones = append(r.NoiseZones, RouteZone[string]{StartS: z.StartS + off, EndS: z.EndS + off, Value: z.Noise, EdgeIndex: i})
		}
		for _, z := range e.Profile.WidthZones {
			shifted := z
			shifted.StartS += off
			shifted.EndS += off
			r.WidthZones = append(r.WidthZones, RouteZone[profile.WidthZone]{StartS: shifted.StartS, EndS: shifted.EndS, Value: shifted, EdgeIndex: i})
		}
		for _, z := range e.Profile.SpeedZones {
			r.SpeedZones = append(r.SpeedZones, RouteZone[float64]{StartS: z.StartS + off, EndS: z.EndS + off, Value: z.MaxSpeedKPH, EdgeIndex: i})
		}
		for _, m := range e.Profile.Markers {
			r.Markers = append(r.Markers, RouteMarker{Name: m.Name, PositionS: m.PositionS + off, EdgeIndex: i})
		}

		cum += e.LengthMeters()
	}
	r.EdgeStart[len(ordered)] = cum

	return r, nil
}

// TotalLengthMeters is the primary route's total arc length.
func (r *Resolved) TotalLengthMeters() float64 {
	return r.EdgeStart[len(r.EdgeStart)-1]
}

// resolveS wraps s modulo total length for loops, else clamps.
func (r *Resolved) resolveS(s float64) float64 {
	total := r.TotalLengthMeters()
	if r.Graph.IsLoop {
		s = mod(s, total)
		return s
	}
	if s < 0 {
		return 0
	}
	if s > total {
		return total
	}
	return s
}

func mod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	if m < 0 {
		m += b
	}
	return m
}

// ResolvePrimaryEdge wraps s modulo the route length if the route is a
// loop (else clamps), then binary-searches the edge-start table,
// returning the containing edge's index and the local offset within
// it.
func (r *Resolved) ResolvePrimaryEdge(s float64) (edgeIndex int, localS float64) {
	s = r.resolveS(s)
	i := sort.Search(len(r.EdgeStart)-1, func(i int) bool { return r.EdgeStart[i+1] > s })
	if i >= len(r.Edges) {
		i = len(r.Edges) - 1
	}
	return i, s - r.EdgeStart[i]
}

// ResolvePrimaryEdgeBounds returns the route-s [start, end) bounds of
// edge index i.
func (r *Resolved) ResolvePrimaryEdgeBounds(i int) (start, end float64) {
	return r.EdgeStart[i], r.EdgeStart[i+1]
}
