// Package area implements named 2-D areas layered over the shape
// store, answering "which areas contain this point" queries.
package area

import (
	"strings"

	"github.com/diamondStar35/top-speed-sub005/internal/track/shape"
)

// Area binds a shape to attribute overrides and free-form metadata.
// Metadata keys are matched case-insensitively.
type Area struct {
	ID          string
	Type        string
	ShapeID     string
	Surface     *string
	Noise       *string
	WidthMeters *float64
	Flags       uint64
	Metadata    map[string]string
}

// metadataValue looks up a metadata key case-insensitively.
func (a Area) metadataValue(key string) (string, bool) {
	key = strings.ToLower(key)
	for k, v := range a.Metadata {
		if strings.ToLower(k) == key {
			return v, true
		}
	}
	return "", false
}

// HasFlag reports whether bit is set in the area's flag bitset.
func (a Area) HasFlag(bit uint64) bool {
	return a.Flags&bit != 0
}

// Registry holds areas in insertion order alongside the shape store
// they reference.
type Registry struct {
	shapes *shape.Store
	areas  []Area
}

// NewRegistry returns an empty area registry backed by shapes.
func NewRegistry(shapes *shape.Store) *Registry {
	return &Registry{shapes: shapes}
}

// Register appends a to the registry. Areas are not validated against
// the shape store at registration time; a dangling ShapeID simply
// never matches (see §4.B: lookup failure means "contains = false").
func (r *Registry) Register(a Area) {
	r.areas = append(r.areas, a)
}

// All returns the areas in insertion order. The returned slice must
// not be mutated by callers.
func (r *Registry) All() []Area {
	return r.areas
}

// FindAreasContaining returns every area containing p, in insertion
// order. Polyline-shaped areas require a positive WidthMeters to ever
// match; absent or non-positive widths exclude the area entirely.
func (r *Registry) FindAreasContaining(p shape.Point) []Area {
	var hits []Area
	for _, a := range r.areas {
		shp, ok := r.shapes.Lookup(a.ShapeID)
		if !ok {
			continue
		}
		if shp.Kind == shape.Polyline {
			if a.WidthMeters == nil || *a.WidthMeters <= 0 {
				continue
			}
			if shape.ContainsPolylineShape(shp, p, *a.WidthMeters/2) {
				hits = append(hits, a)
			}
			continue
		}
		if shape.ContainsShape(shp, p) {
			hits = append(hits, a)
		}
	}
	return hits
}
