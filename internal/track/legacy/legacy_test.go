package legacy

import (
	"strings"
	"testing"

	"github.com/diamondStar35/top-speed-sub005/internal/fsutil"
	"github.com/diamondStar35/top-speed-sub005/internal/testutil"
)

func TestParse_MissingFileYieldsDefaultStraight(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	res, err := Parse(fs, "nope.trk")
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 || res.Segments[0].LengthMeters != 50 {
		t.Fatalf("expected single 50m default straight, got %+v", res.Segments)
	}
	if res.Weather != Sunny || res.Ambience != NoAmbience {
		t.Errorf("expected clear weather / no ambience, got %v/%v", res.Weather, res.Ambience)
	}
}

func TestParse_EmptyFileYieldsDefaultStraight(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	testutil.AssertNoError(t, fs.WriteFile("empty.trk", []byte("   \n\n"), 0o644))
	res, err := Parse(fs, "empty.trk")
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 || res.Segments[0].LengthMeters != 50 {
		t.Fatalf("expected single 50m default straight, got %+v", res.Segments)
	}
}

func TestParse_MetadataAndComments(t *testing.T) {
	data := "# a comment\nname=Test Oval\n; another comment\n0 0 5000\n-1 1 1\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if res.Name != "Test Oval" {
		t.Errorf("Name = %q, want %q", res.Name, "Test Oval")
	}
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	if res.Segments[0].LengthMeters != 50 {
		t.Errorf("LengthMeters = %v, want 50", res.Segments[0].LengthMeters)
	}
	if res.Weather != Rain {
		t.Errorf("Weather = %v, want Rain", res.Weather)
	}
	if res.Ambience != Desert {
		t.Errorf("Ambience = %v, want Desert", res.Ambience)
	}
}

func TestParse_ColonMetadataLine(t *testing.T) {
	data := "title: Colon Track\n0 0 10000\n-1 0 0\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if res.Name != "Colon Track" {
		t.Errorf("Name = %q, want %q", res.Name, "Colon Track")
	}
}

// TestParse_FourIntRecordBelowThreshold exercises the 4-int disambiguation:
// a third field below legacyMinPartLength forces a trailing length field.
func TestParse_FourIntRecordBelowThreshold(t *testing.T) {
	data := "1 2 3 12000\n-1 2 1\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(res.Segments), res.Segments)
	}
	seg := res.Segments[0]
	if seg.Type != 1 || seg.Surface != 2 || seg.Noise != 3 || seg.LengthMeters != 120 {
		t.Errorf("unexpected segment: %+v", seg)
	}
}

// TestParse_ThreeIntRecordAboveThreshold exercises the 3-int form: the
// third field itself is >= legacyMinPartLength so it is the length.
func TestParse_ThreeIntRecordAboveThreshold(t *testing.T) {
	data := "2 1 8000\n-1 0 0\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d: %+v", len(res.Segments), res.Segments)
	}
	seg := res.Segments[0]
	if seg.Type != 2 || seg.Surface != 1 || seg.Noise != 0 || seg.LengthMeters != 80 {
		t.Errorf("unexpected segment: %+v", seg)
	}
}

func TestParse_MultipleRecordsUntilSentinel(t *testing.T) {
	data := "0 0 10000\n1 1 20000\n-1 3 2\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if res.Segments[0].LengthMeters != 100 || res.Segments[1].LengthMeters != 200 {
		t.Errorf("unexpected lengths: %+v", res.Segments)
	}
	if res.Weather != Storm {
		t.Errorf("Weather = %v, want Storm", res.Weather)
	}
	if res.Ambience != Airport {
		t.Errorf("Ambience = %v, want Airport", res.Ambience)
	}
}

func TestParse_LengthBelowMinimumIsRaised(t *testing.T) {
	data := "0 0 100 10\n-1 0 0\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	if res.Segments[0].LengthMeters != legacyMinPartLength/legacyUnitsPerMeter {
		t.Errorf("LengthMeters = %v, want %v", res.Segments[0].LengthMeters, legacyMinPartLength/legacyUnitsPerMeter)
	}
}

func TestParse_OutOfRangeDiscreteFieldsClampToZero(t *testing.T) {
	data := "99 99 99 10000\n-1 0 0\n"
	res, err := ParseBytes([]byte(data))
	testutil.AssertNoError(t, err)
	seg := res.Segments[0]
	if seg.Type != 0 || seg.Surface != 0 || seg.Noise != 0 {
		t.Errorf("expected out-of-range fields clamped to 0, got %+v", seg)
	}
}

func TestParse_InvalidTokenErrors(t *testing.T) {
	_, err := ParseBytes([]byte("0 0 notanumber\n-1 0 0\n"))
	testutil.AssertError(t, err)
	if !strings.Contains(err.Error(), "invalid integer token") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParse_MissingSentinelErrors(t *testing.T) {
	_, err := ParseBytes([]byte("0 0 10000\n"))
	testutil.AssertError(t, err)
}
