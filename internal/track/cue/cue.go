// Package cue implements the marker and beacon managers: point cues
// with optional shape-gated activation, range queries, and nearest-cue
// heading-delta computation.
package cue

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/diamondStar35/top-speed-sub005/internal/track/shape"
	"github.com/diamondStar35/top-speed-sub005/internal/units"
)

// Metadata keys consulted as a width fallback when a shape-gated
// polyline entry has no explicit width.
const (
	metaWidth           = "width"
	metaActivationWidth = "activation_width"
	metaLaneWidth       = "lane_width"
)

// Entry is a point cue: a marker or a beacon, depending on which
// manager holds it.
type Entry struct {
	ID       string
	Kind     string // type/role tag, matched against a query's type filter
	Position shape.Point
	Heading  *float64
	ShapeID  string // optional; when set, containment gates activation
	Metadata map[string]string
}

func (e Entry) metadataValue(key string) (string, bool) {
	key = strings.ToLower(key)
	for k, v := range e.Metadata {
		if strings.ToLower(k) == key {
			return v, true
		}
	}
	return "", false
}

// polylineHalfWidth resolves the half-width to use for a shape-gated
// polyline entry: its own WidthMeters if set, else a metadata fallback
// (width/activation_width/lane_width, tried in that order), else def.
func polylineHalfWidth(e Entry, widthMeters *float64, def float64) float64 {
	if widthMeters != nil && *widthMeters > 0 {
		return *widthMeters / 2
	}
	for _, key := range []string{metaWidth, metaActivationWidth, metaLaneWidth} {
		if v, ok := e.metadataValue(key); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f / 2
			}
		}
	}
	return def / 2
}

func distance(a, b shape.Point) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Active is one matched entry returned by a range query, with its
// distance to the probe point and (if both headings are known) the
// heading delta to it.
type Active struct {
	Entry             Entry
	DistanceMeters    float64
	HeadingDeltaDeg   *float64
}

func sortActive(entries []Active) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DistanceMeters < entries[j].DistanceMeters
	})
}

func headingDeltaTo(probeHeading *float64, e Entry) *float64 {
	if probeHeading == nil || e.Heading == nil {
		return nil
	}
	d := units.HeadingDelta(*probeHeading, *e.Heading)
	return &d
}

// Beacon is a point-of-interest entry whose non-shape-gated activation
// uses its own fixed radius.
type Beacon struct {
	Entry
	ActivationRadiusMeters float64
	WidthMeters            *float64
}

// BeaconManager answers spatial queries over a registry of beacons.
type BeaconManager struct {
	shapes                   *shape.Store
	beacons                  []Beacon
	defaultPolylineHalfWidth float64
}

// NewBeaconManager returns an empty beacon manager. defaultWidth is
// the polyline fallback width used when no explicit width or metadata
// key resolves one.
func NewBeaconManager(shapes *shape.Store, defaultWidth float64) *BeaconManager {
	return &BeaconManager{shapes: shapes, defaultPolylineHalfWidth: defaultWidth}
}

// Register appends b to the manager.
func (m *BeaconManager) Register(b Beacon) {
	m.beacons = append(m.beacons, b)
}

func (m *BeaconManager) isActive(b Beacon, p shape.Point) bool {
	if b.ShapeID != "" {
		shp, ok := m.shapes.Lookup(b.ShapeID)
		if !ok {
			return false
		}
		if shp.Kind == shape.Polyline {
			hw := polylineHalfWidth(b.Entry, b.WidthMeters, m.defaultPolylineHalfWidth)
			return shape.ContainsPolylineShape(shp, p, hw)
		}
		return shape.ContainsShape(shp, p)
	}
	return distance(b.Position, p) <= b.ActivationRadiusMeters
}

func matchesKind(kind, filter string) bool {
	return filter == "" || strings.EqualFold(kind, filter)
}

// FindInRange returns every active beacon matching typeFilter (empty
// matches all kinds), sorted by ascending distance to p (stable ties).
func (m *BeaconManager) FindInRange(p shape.Point, heading *float64, typeFilter string) []Active {
	var out []Active
	for _, b := range m.beacons {
		if !matchesKind(b.Kind, typeFilter) {
			continue
		}
		if !m.isActive(b, p) {
			continue
		}
		out = append(out, Active{Entry: b.Entry, DistanceMeters: distance(b.Position, p), HeadingDeltaDeg: headingDeltaTo(heading, b.Entry)})
	}
	sortActive(out)
	return out
}

// TryGetNearestCue returns the single closest active beacon, or false
// if none match.
func (m *BeaconManager) TryGetNearestCue(p shape.Point, heading *float64, typeFilter string) (Active, bool) {
	hits := m.FindInRange(p, heading, typeFilter)
	if len(hits) == 0 {
		return Active{}, false
	}
	return hits[0], true
}

// Marker is a point-of-interest entry whose non-shape-gated activation
// uses a caller-supplied range limit rather than a stored radius.
type Marker struct {
	Entry
	WidthMeters *float64
}

// MarkerManager answers spatial queries over a registry of markers.
type MarkerManager struct {
	shapes                   *shape.Store
	markers                  []Marker
	defaultPolylineHalfWidth float64
}

// NewMarkerManager returns an empty marker manager.
func NewMarkerManager(shapes *shape.Store, defaultWidth float64) *MarkerManager {
	return &MarkerManager{shapes: shapes, defaultPolylineHalfWidth: defaultWidth}
}

// Register appends m to the manager.
func (m *MarkerManager) Register(marker Marker) {
	m.markers = append(m.markers, marker)
}

func (m *MarkerManager) isActive(marker Marker, p shape.Point, rangeMeters float64) bool {
	if marker.ShapeID != "" {
		shp, ok := m.shapes.Lookup(marker.ShapeID)
		if !ok {
			return false
		}
		if shp.Kind == shape.Polyline {
			hw := polylineHalfWidth(marker.Entry, marker.WidthMeters, m.defaultPolylineHalfWidth)
			return shape.ContainsPolylineShape(shp, p, hw)
		}
		return shape.ContainsShape(shp, p)
	}
	return distance(marker.Position, p) <= rangeMeters
}

// FindInRange returns every active marker matching typeFilter (empty
// matches all kinds) within rangeMeters, sorted by ascending distance.
func (m *MarkerManager) FindInRange(p shape.Point, heading *float64, rangeMeters float64, typeFilter string) []Active {
	var out []Active
	for _, marker := range m.markers {
		if !matchesKind(marker.Kind, typeFilter) {
			continue
		}
		if !m.isActive(marker, p, rangeMeters) {
			continue
		}
		out = append(out, Active{Entry: marker.Entry, DistanceMeters: distance(marker.Position, p), HeadingDeltaDeg: headingDeltaTo(heading, marker.Entry)})
	}
	sortActive(out)
	return out
}

// TryGetNearestMarker returns the single closest active marker, or
// false if none match.
func (m *MarkerManager) TryGetNearestMarker(p shape.Point, heading *float64, rangeMeters float64, typeFilter string) (Active, bool) {
	hits := m.FindInRange(p, heading, rangeMeters, typeFilter)
	if len(hits) == 0 {
		return Active{}, false
	}
	return hits[0], true
}
