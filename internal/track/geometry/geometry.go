// Package geometry builds arc-length-parameterised 1-D track geometry
// out of an ordered list of spans (straight/arc/clothoid) and samples
// poses (position, orientation, curvature) along it.
package geometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags the variant a GeometrySpan carries.
type Kind int

const (
	Straight Kind = iota
	Arc
	Clothoid
)

// Severity is a discrete curve-sharpness annotation, informational
// only (used for announcer cue selection, not geometry math).
type Severity int

const (
	Easy Severity = iota
	Normal
	Hard
	Hairpin
)

// CurveDirection is a discrete curve-handedness annotation.
type CurveDirection int

const (
	DirStraight CurveDirection = iota
	DirLeft
	DirRight
)

// Span is one piece of constant-kind, monotone-curvature geometry.
type Span struct {
	Kind                  Kind
	LengthMeters          float64
	StartCurvature        float64 // signed, 1/m
	EndCurvature          float64 // signed, 1/m
	RadiusMeters          float64 // Arc only
	StartRadiusMeters     float64 // Clothoid only
	EndRadiusMeters       float64 // Clothoid only
	BankDegrees           float64
	ElevationDeltaMeters  float64
	CurveSeverity         *Severity
	CurveDirection        *CurveDirection
}

// Validate checks the per-kind curvature invariants.
func (s Span) Validate() error {
	if s.LengthMeters <= 0 {
		return fmt.Errorf("span: length must be positive, got %f", s.LengthMeters)
	}
	switch s.Kind {
	case Straight:
		if s.StartCurvature != 0 || s.EndCurvature != 0 {
			return fmt.Errorf("span: straight must have zero curvature at both ends")
		}
	case Arc:
		if s.RadiusMeters <= 0 {
			return fmt.Errorf("span: arc radius must be positive, got %f", s.RadiusMeters)
		}
		expect := 1 / s.RadiusMeters
		if math.Abs(math.Abs(s.StartCurvature)-expect) > 1e-9 || s.StartCurvature != s.EndCurvature {
			return fmt.Errorf("span: arc start/end curvature must both equal ±1/radius")
		}
	case Clothoid:
		if s.StartRadiusMeters == 0 || s.EndRadiusMeters == 0 {
			return fmt.Errorf("span: clothoid radii must be non-zero")
		}
	default:
		return fmt.Errorf("span: unknown kind %v", s.Kind)
	}
	return nil
}

// deltaHeadingDegrees returns the total signed heading change across
// the span: Δheading = ∫κ ds. For Arc this is length·(1/R), signed by
// curvature direction; for Clothoid, curvature is taken as linearly
// interpolated so Δheading = 0.5·(κ0+κ1)·length; for Straight it is 0.
func (s Span) deltaHeadingDegrees() float64 {
	switch s.Kind {
	case Straight:
		return 0
	case Arc:
		return radToDeg(s.StartCurvature * s.LengthMeters)
	case Clothoid:
		return radToDeg(0.5 * (s.StartCurvature + s.EndCurvature) * s.LengthMeters)
	default:
		return 0
	}
}

// headingAtLocal returns the heading in degrees after travelling
// localS metres into the span, given the heading at the span's start.
func (s Span) headingAtLocal(startHeadingDeg, localS float64) float64 {
	switch s.Kind {
	case Straight:
		return startHeadingDeg
	case Arc:
		return startHeadingDeg + radToDeg(s.StartCurvature*localS)
	case Clothoid:
		// κ(u) = κ0 + (κ1-κ0)·u/L; ∫0^localS κ(u) du = κ0·localS + (κ1-κ0)·localS²/(2L)
		k0, k1, L := s.StartCurvature, s.EndCurvature, s.LengthMeters
		integral := k0*localS + (k1-k0)*(localS*localS)/(2*L)
		return startHeadingDeg + radToDeg(integral)
	default:
		return startHeadingDeg
	}
}

// curvatureAtLocal returns the instantaneous curvature localS metres
// into the span.
func (s Span) curvatureAtLocal(localS float64) float64 {
	switch s.Kind {
	case Straight:
		return 0
	case Arc:
		return s.StartCurvature
	case Clothoid:
		t := localS / s.LengthMeters
		return s.StartCurvature + (s.EndCurvature-s.StartCurvature)*t
	default:
		return 0
	}
}

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
func degToRad(d float64) float64 { return d * math.Pi / 180 }

// Spec is an ordered sequence of spans with a sampling interval and a
// loop flag.
type Spec struct {
	Spans               []Span
	SampleSpacingMeters float64
	IsLoop              bool
}

// Validate checks spec-level invariants.
func (g Spec) Validate() error {
	if len(g.Spans) == 0 {
		return fmt.Errorf("geometry: spec must contain at least one span")
	}
	if g.SampleSpacingMeters <= 0 {
		return fmt.Errorf("geometry: sample spacing must be positive, got %f", g.SampleSpacingMeters)
	}
	for i, s := range g.Spans {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("geometry: span %d: %w", i, err)
		}
	}
	return nil
}

// Pose is a sampled point along the geometry: position and orientation
// frame in world space, plus the heading and curvature at that point.
type Pose struct {
	Position   r3.Vec
	Forward    r3.Vec
	Right      r3.Vec
	Up         r3.Vec
	HeadingDeg float64
	Curvature  float64
}

type sample struct {
	s         float64
	spanIndex int
	heading   float64
	curvature float64
	position  r3.Vec
}

// Built is a constructed geometry ready for pose sampling.
type Built struct {
	spans     []Span
	spanStart []float64 // len(spans)+1; spanStart[i] is the cumulative start of spans[i]
	samples   []sample
	isLoop    bool
}

// TotalLengthMeters returns the sum of all span lengths.
func (b *Built) TotalLengthMeters() float64 {
	return b.spanStart[len(b.spanStart)-1]
}

// SpanStart returns the cumulative arc-length start of spans[i].
func (b *Built) SpanStart(i int) float64 {
	return b.spanStart[i]
}

// Spans returns the built spans in order. The slice must not be mutated.
func (b *Built) Spans() []Span {
	return b.spans
}

// Build accumulates arc lengths, integrates heading, and advances
// planar position using midpoint integration at SampleSpacingMeters
// intervals, producing a dense sample table for Pose to interpolate
// against.
func Build(spec Spec) (*Built, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	b := &Built{
		spans:     spec.Spans,
		spanStart: make([]float64, len(spec.Spans)+1),
		isLoop:    spec.IsLoop,
	}

	cum := 0.0
	heading := 0.0
	pos := r3.Vec{}
	elevBase := 0.0

	for i, span := range spec.Spans {
		b.spanStart[i] = cum
		n := int(math.Ceil(span.LengthMeters / spec.SampleSpacingMeters))
		if n < 1 {
			n = 1
		}
		dn := span.LengthMeters / float64(n)

		prevLocalS := 0.0
		prevHeading := heading
		prevPos := pos

		b.samples = append(b.samples, sample{
			s: cum, spanIndex: i, heading: heading,
			curvature: span.curvatureAtLocal(0), position: pos,
		})

		for k := 1; k <= n; k++ {
			localS := dn * float64(k)
			if k == n {
				localS = span.LengthMeters
			}
			h := span.headingAtLocal(heading, localS)
			midHeading := span.headingAtLocal(heading, (prevLocalS+localS)/2)
			step := localS - prevLocalS
			dir := degToRad(midHeading)
			forward := r3.Vec{X: math.Cos(dir), Y: 0, Z: math.Sin(dir)}
			newPos := r3.Add(prevPos, r3.Scale(step, forward))
			newPos.Y = elevBase + span.ElevationDeltaMeters*(localS/span.LengthMeters)

			b.samples = append(b.samples, sample{
				s: cum + localS, spanIndex: i, heading: h,
				curvature: span.curvatureAtLocal(localS), position: newPos,
			})

			prevLocalS = localS
			prevHeading = h
			prevPos = newPos
		}

		heading = prevHeading
		pos = prevPos
		elevBase += span.ElevationDeltaMeters
		cum += span.LengthMeters
	}
	b.spanStart[len(spec.Spans)] = cum

	return b, nil
}

// resolveS wraps s modulo total length for loops, else clamps to
// [0, total length].
func (b *Built) resolveS(s float64) float64 {
	total := b.TotalLengthMeters()
	if b.isLoop {
		s = math.Mod(s, total)
		if s < 0 {
			s += total
		}
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

// Pose samples the geometry at arc-length s, binary-searching the
// cumulative sample table and interpolating within the bracket.
func (b *Built) Pose(s float64) Pose {
	s = b.resolveS(s)

	i := sort.Search(len(b.samples), func(i int) bool { return b.samples[i].s >= s }) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(b.samples)-1 {
		i = len(b.samples) - 2
	}
	lo, hi := b.samples[i], b.samples[i+1]

	t := 0.0
	if hi.s > lo.s {
		t = (s - lo.s) / (hi.s - lo.s)
	}

	headingDelta := normalizeSignedDelta(hi.heading - lo.heading)
	heading := normalizeDegrees(lo.heading + t*headingDelta)
	curvature := lo.curvature + t*(hi.curvature-lo.curvature)
	position := r3.Add(lo.position, r3.Scale(t, r3.Sub(hi.position, lo.position)))

	bank := b.spans[lo.spanIndex].BankDegrees

	return buildPose(position, heading, curvature, bank)
}

func buildPose(position r3.Vec, headingDeg, curvature, bankDeg float64) Pose {
	headRad := degToRad(headingDeg)
	bankRad := degToRad(bankDeg)

	forward := r3.Unit(r3.Vec{X: math.Cos(headRad), Y: 0, Z: math.Sin(headRad)})
	flatRight := r3.Vec{X: math.Sin(headRad), Y: 0, Z: -math.Cos(headRad)}
	worldUp := r3.Vec{X: 0, Y: 1, Z: 0}

	up := r3.Unit(r3.Add(r3.Scale(math.Cos(bankRad), worldUp), r3.Scale(math.Sin(bankRad), flatRight)))
	right := r3.Unit(r3.Cross(up, forward))

	return Pose{
		Position:   position,
		Forward:    forward,
		Right:      right,
		Up:         up,
		HeadingDeg: headingDeg,
		Curvature:  curvature,
	}
}

func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// normalizeSignedDelta wraps a heading delta into (-180, 180] so
// interpolation takes the short way around.
func normalizeSignedDelta(delta float64) float64 {
	d := math.Mod(delta, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}
