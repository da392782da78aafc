package shape

import "testing"

func TestStore_RegisterAndLookup(t *testing.T) {
	s := NewStore()
	if err := s.Register(Shape{ID: "Zone1", Kind: Rect, Width: 10, Height: 10}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, ok := s.Lookup("zone1"); !ok {
		t.Error("expected case-insensitive lookup to find registered shape")
	}
	if _, ok := s.Lookup("ZONE1"); !ok {
		t.Error("expected case-insensitive lookup to find registered shape")
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("expected lookup of unregistered id to fail")
	}
}

func TestStore_RegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"empty id", Shape{Kind: Rect, Width: 1, Height: 1}, true},
		{"rect zero width", Shape{ID: "a", Kind: Rect, Width: 0, Height: 1}, true},
		{"rect ok", Shape{ID: "a", Kind: Rect, Width: 1, Height: 1}, false},
		{"circle zero radius", Shape{ID: "b", Kind: Circle, Radius: 0}, true},
		{"circle ok", Shape{ID: "b", Kind: Circle, Radius: 1}, false},
		{"polygon too few points", Shape{ID: "c", Kind: Polygon, Points: []Point{{0, 0}, {1, 0}}}, true},
		{"polygon ok", Shape{ID: "c", Kind: Polygon, Points: []Point{{0, 0}, {1, 0}, {1, 1}}}, false},
		{"polyline too few points", Shape{ID: "d", Kind: Polyline, Points: []Point{{0, 0}}}, true},
		{"polyline ok", Shape{ID: "d", Kind: Polyline, Points: []Point{{0, 0}, {1, 0}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			err := s.Register(tt.shape)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContains_Rect(t *testing.T) {
	shp := Shape{ID: "r", Kind: Rect, OriginX: 0, OriginZ: 0, Width: 10, Height: 5}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{5, 2}, true},
		{"on min corner", Point{0, 0}, true},
		{"on max corner", Point{10, 5}, true},
		{"outside x", Point{11, 2}, false},
		{"outside z", Point{5, 6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsShape(shp, tt.p); got != tt.want {
				t.Errorf("ContainsShape(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestContains_Circle(t *testing.T) {
	shp := Shape{ID: "c", Kind: Circle, OriginX: 0, OriginZ: 0, Radius: 5}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"centre", Point{0, 0}, true},
		{"on boundary", Point{5, 0}, true},
		{"outside", Point{5.01, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsShape(shp, tt.p); got != tt.want {
				t.Errorf("ContainsShape(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestContains_Polygon(t *testing.T) {
	square := Shape{ID: "sq", Kind: Polygon, Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"centre", Point{5, 5}, true},
		{"outside", Point{15, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsShape(square, tt.p); got != tt.want {
				t.Errorf("ContainsShape(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// TestContainsPolyline_S4 mirrors scenario S4: a polyline through
// (0,0)-(10,0)-(10,10) with half-width 2.
func TestContainsPolyline_S4(t *testing.T) {
	shp := Shape{ID: "p", Kind: Polyline, Points: []Point{{0, 0}, {10, 0}, {10, 10}}}
	tests := []struct {
		name      string
		p         Point
		halfWidth float64
		want      bool
	}{
		{"on the line", Point{10, 5}, 2, true},
		{"within half width", Point{10, 3}, 2, true},
		{"exactly at half width boundary", Point{12, 5}, 2, true},
		{"past the boundary", Point{13, 5}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPolylineShape(shp, tt.p, tt.halfWidth); got != tt.want {
				t.Errorf("ContainsPolylineShape(%v, %v) = %v, want %v", tt.p, tt.halfWidth, got, tt.want)
			}
		})
	}
}

func TestContainsPolyline_SegmentOrderSymmetry(t *testing.T) {
	forward := Shape{ID: "f", Kind: Polyline, Points: []Point{{0, 0}, {10, 0}, {10, 10}}}
	reversed := Shape{ID: "r", Kind: Polyline, Points: []Point{{10, 10}, {10, 0}, {0, 0}}}

	probe := Point{10, 5}
	if got, want := ContainsPolylineShape(forward, probe, 2), ContainsPolylineShape(reversed, probe, 2); got != want {
		t.Errorf("forward = %v, reversed = %v; want equal", got, want)
	}
}

func TestContainsPolyline_NonPositiveHalfWidth(t *testing.T) {
	shp := Shape{ID: "p", Kind: Polyline, Points: []Point{{0, 0}, {10, 0}}}
	if ContainsPolylineShape(shp, Point{0, 0}, 0) {
		t.Error("expected zero half-width to never match")
	}
}

func TestStore_UnknownIDYieldsNotContained(t *testing.T) {
	s := NewStore()
	if s.Contains("missing", Point{0, 0}) {
		t.Error("expected unknown id to yield not-contained")
	}
	if s.ContainsPolyline("missing", Point{0, 0}, 5) {
		t.Error("expected unknown id to yield not-contained")
	}
}
