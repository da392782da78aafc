package legacy

import (
	"testing"

	"github.com/diamondStar35/top-speed-sub005/internal/testutil"
)

// TestBuildLayout_S6LegacyParse mirrors scenario S6 ("1 2 0 6000 2 3 7
// -1 1 0" -> type/surface/weather/ambience as decoded below). The
// second record's length field sits directly against the sentinel, so
// the count pass falls back to the 3-int reading for it (see
// recordWidth) and the floor-raised length is 50m, not a literal
// reading of "7" as 70m.
func TestBuildLayout_S6LegacyParse(t *testing.T) {
	res, err := ParseBytes([]byte("1 2 0 6000 2 3 7 -1 1 0"))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(res.Segments), res.Segments)
	}
	if res.Segments[0].LengthMeters != 60 || res.Segments[1].LengthMeters != 50 {
		t.Fatalf("unexpected lengths: %+v", res.Segments)
	}
	if res.Segments[0].Surface != 2 || res.Segments[1].Surface != 3 {
		t.Fatalf("unexpected surfaces: %+v", res.Segments)
	}

	lay, err := res.BuildLayout(10)
	testutil.AssertNoError(t, err)
	if got, want := lay.PrimaryRouteLengthMeters(), 110.0; got != want {
		t.Errorf("PrimaryRouteLengthMeters() = %v, want %v", got, want)
	}
	if got := lay.SurfaceAt(30); got != "dirt" {
		t.Errorf("SurfaceAt(30) = %q, want dirt (surface=2)", got)
	}
	if got := lay.SurfaceAt(100); got != "ice" {
		t.Errorf("SurfaceAt(100) = %q, want ice (surface=3)", got)
	}
	if lay.Weather != 1 {
		t.Errorf("Weather = %v, want Rain(1)", lay.Weather)
	}
}

// TestParse_FourIntRecordAdjacentToSentinelFallsBackToThreeInt locks
// down the sentinel-lookahead guard in recordWidth directly.
func TestParse_FourIntRecordAdjacentToSentinelFallsBackToThreeInt(t *testing.T) {
	res, err := ParseBytes([]byte("2 3 7 -1 0 0"))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(res.Segments), res.Segments)
	}
	if res.Segments[0].Type != 2 || res.Segments[0].Surface != 3 || res.Segments[0].Noise != 0 {
		t.Errorf("unexpected segment: %+v", res.Segments[0])
	}
}

// TestParse_FourIntRecordWithRoomUsesNoiseField confirms the ordinary
// 4-int reading still applies when the length field isn't the sentinel.
func TestParse_FourIntRecordWithRoomUsesNoiseField(t *testing.T) {
	res, err := ParseBytes([]byte("2 3 7 9000 -1 0 0"))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(res.Segments), res.Segments)
	}
	seg := res.Segments[0]
	if seg.Type != 2 || seg.Surface != 3 || seg.Noise != 7 || seg.LengthMeters != 90 {
		t.Errorf("unexpected segment: %+v", seg)
	}
}

func TestBuildLayout_RejectsEmptySegments(t *testing.T) {
	res := Result{}
	_, err := res.BuildLayout(10)
	testutil.AssertError(t, err)
}

func TestBuildLayout_DefaultResultIsBuildable(t *testing.T) {
	lay, err := defaultResult().BuildLayout(10)
	testutil.AssertNoError(t, err)
	if lay.PrimaryRouteLengthMeters() != 50 {
		t.Errorf("PrimaryRouteLengthMeters() = %v, want 50", lay.PrimaryRouteLengthMeters())
	}
}
