package diagviz

import (
	"bytes"
	"strings"
	"testing"

	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
	"github.com/diamondStar35/top-speed-sub005/internal/track/profile"
	"github.com/diamondStar35/top-speed-sub005/internal/track/route"
)

func testLayout(t *testing.T) *layout.TrackLayout {
	t.Helper()
	edge, err := route.NewEdge("A", "p1", "p1", geometry.Spec{
		Spans: []geometry.Span{
			{Kind: geometry.Straight, LengthMeters: 100},
			{Kind: geometry.Arc, LengthMeters: 50, RadiusMeters: 30, StartCurvature: 1.0 / 30, EndCurvature: 1.0 / 30},
		},
		SampleSpacingMeters: 2, IsLoop: true,
	}, profile.Profile{
		DefaultSurface: "asphalt", DefaultNoise: "none", DefaultWidth: 10,
		SpeedZones: []profile.SpeedZone{{StartS: 0, EndS: 50, MaxSpeedKPH: 60}},
	})
	if err != nil {
		t.Fatalf("edge: %v", err)
	}
	g, err := route.NewGraph([]*route.Edge{edge}, []string{"A"}, true)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	lay, err := layout.New(g, layout.Sunny, layout.NoAmbience, "asphalt", "none", 10, layout.Metadata{Name: "diagviz-test"}, nil)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return lay
}

func TestRenderPNG_ProducesNonEmptyOutput(t *testing.T) {
	lay := testLayout(t)
	var buf bytes.Buffer
	if err := RenderPNG(lay, &buf); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty PNG output")
	}
	// PNG magic number.
	if !bytes.HasPrefix(buf.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("output does not start with the PNG signature")
	}
}

func TestRenderHTML_ProducesSelfContainedPage(t *testing.T) {
	lay := testLayout(t)
	var buf bytes.Buffer
	if err := RenderHTML(lay, &buf); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html") && !strings.Contains(out, "<!DOCTYPE") {
		t.Error("expected an HTML document")
	}
	if !strings.Contains(out, "diagviz-test") {
		t.Error("expected the layout name in the rendered subtitle")
	}
}

func TestSampleProfile_CoversFullRouteLength(t *testing.T) {
	lay := testLayout(t)
	samples := sampleProfile(lay, 5)
	if len(samples) == 0 {
		t.Fatal("expected at least one sample")
	}
	last := samples[len(samples)-1]
	if last.s != lay.PrimaryRouteLengthMeters() {
		t.Errorf("last sample s = %v, want route length %v", last.s, lay.PrimaryRouteLengthMeters())
	}
}

func TestSurfaceBands_MergesContiguousRuns(t *testing.T) {
	lay := testLayout(t)
	bands := surfaceBands(lay)
	if len(bands) != 1 {
		t.Fatalf("expected a single merged surface band for a uniform-surface layout, got %d: %+v", len(bands), bands)
	}
	if bands[0].label != "asphalt" {
		t.Errorf("label = %q, want asphalt", bands[0].label)
	}
}
