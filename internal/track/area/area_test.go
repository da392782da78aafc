package area

import (
	"testing"

	"github.com/diamondStar35/top-speed-sub005/internal/track/shape"
)

func newFixtureRegistry(t *testing.T) (*Registry, *shape.Store) {
	t.Helper()
	shapes := shape.NewStore()
	if err := shapes.Register(shape.Shape{ID: "box", Kind: shape.Rect, Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if err := shapes.Register(shape.Shape{ID: "ring", Kind: shape.Circle, Radius: 5}); err != nil {
		t.Fatal(err)
	}
	if err := shapes.Register(shape.Shape{ID: "lane", Kind: shape.Polyline, Points: []shape.Point{{0, 0}, {20, 0}}}); err != nil {
		t.Fatal(err)
	}
	return NewRegistry(shapes), shapes
}

func TestFindAreasContaining_MultipleLayers(t *testing.T) {
	reg, _ := newFixtureRegistry(t)
	reg.Register(Area{ID: "a-box", ShapeID: "box"})
	reg.Register(Area{ID: "a-ring", ShapeID: "ring"})

	hits := reg.FindAreasContaining(shape.Point{X: 1, Z: 1})
	if len(hits) != 2 {
		t.Fatalf("expected 2 overlapping areas, got %d: %v", len(hits), hits)
	}
	if hits[0].ID != "a-box" || hits[1].ID != "a-ring" {
		t.Errorf("expected insertion order preserved, got %v", hits)
	}
}

func TestFindAreasContaining_PolylineRequiresWidth(t *testing.T) {
	reg, _ := newFixtureRegistry(t)
	reg.Register(Area{ID: "no-width", ShapeID: "lane"})
	width := 4.0
	reg.Register(Area{ID: "with-width", ShapeID: "lane", WidthMeters: &width})
	zeroWidth := 0.0
	reg.Register(Area{ID: "zero-width", ShapeID: "lane", WidthMeters: &zeroWidth})

	hits := reg.FindAreasContaining(shape.Point{X: 5, Z: 0})
	if len(hits) != 1 || hits[0].ID != "with-width" {
		t.Errorf("expected only the width-carrying area to match, got %v", hits)
	}
}

func TestFindAreasContaining_DanglingShapeIDNotFatal(t *testing.T) {
	reg, _ := newFixtureRegistry(t)
	reg.Register(Area{ID: "ghost", ShapeID: "does-not-exist"})

	hits := reg.FindAreasContaining(shape.Point{X: 0, Z: 0})
	if len(hits) != 0 {
		t.Errorf("expected dangling shape reference to simply not match, got %v", hits)
	}
}

func TestArea_MetadataCaseInsensitive(t *testing.T) {
	a := Area{Metadata: map[string]string{"Lane_Width": "4"}}
	v, ok := a.metadataValue("lane_width")
	if !ok || v != "4" {
		t.Errorf("expected case-insensitive metadata lookup to find value, got %q, %v", v, ok)
	}
}
