// Package validate checks a built TrackLayout for geometric sanity
// and zone coherence, producing a tiered warning/error report.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/diamondStar35/top-speed-sub005/internal/config"
	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
	"github.com/diamondStar35/top-speed-sub005/internal/track/profile"
	"github.com/diamondStar35/top-speed-sub005/internal/track/route"
)

// Severity orders validator findings: Warning < Error.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is one validator finding.
type Issue struct {
	Severity  Severity
	Message   string
	SpanIndex *int
	Section   string
}

// Report is the result of validating a layout: is_valid iff it
// contains no errors.
type Report struct {
	Issues []Issue
}

// IsValid reports whether the report contains no Error-severity issues.
func (r Report) IsValid() bool {
	for _, i := range r.Issues {
		if i.Severity == Error {
			return false
		}
	}
	return true
}

func intPtr(i int) *int { return &i }

// Validate runs all four phases (geometry, zones, markers, overlaps)
// against lay using cfg's thresholds.
func Validate(lay *layout.TrackLayout, cfg *config.ValidatorConfig) Report {
	var r Report
	validateGeometry(lay, cfg, &r)
	validateZones(lay, cfg, &r)
	validateMarkers(lay, &r)
	validateOverlaps(lay, cfg, &r)
	return r
}

func validateGeometry(lay *layout.TrackLayout, cfg *config.ValidatorConfig, r *Report) {
	spans := lay.GeometrySpec().Spans
	spacing := lay.GeometrySpec().SampleSpacingMeters

	for i, span := range spans {
		idx := intPtr(i)
		if span.LengthMeters < cfg.GetShortSpanWarningMeters() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: length %.1fm is short", i, span.LengthMeters), idx, "geometry"})
		}

		minRadius, hasRadius := spanMinRadius(span)
		if hasRadius {
			if minRadius < cfg.GetRadiusErrorMeters() {
				r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("span %d: radius %.1fm below minimum %.1fm", i, minRadius, cfg.GetRadiusErrorMeters()), idx, "geometry"})
			} else if minRadius > cfg.GetRadiusWarningMeters() {
				r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: radius %.1fm unusually large", i, minRadius), idx, "geometry"})
			}
			spacingLimitWarn := minRadius * cfg.GetSampleSpacingWarningFraction()
			spacingLimitErr := minRadius * cfg.GetSampleSpacingErrorFraction()
			if spacing > spacingLimitErr {
				r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("span %d: sample spacing %.2fm too coarse for radius %.1fm", i, spacing, minRadius), idx, "geometry"})
			} else if spacing > spacingLimitWarn {
				r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: sample spacing %.2fm coarse for radius %.1fm", i, spacing, minRadius), idx, "geometry"})
			}
		}

		if math.Abs(span.BankDegrees) > cfg.GetBankErrorDegrees() {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("span %d: bank %.1f° exceeds error threshold", i, span.BankDegrees), idx, "geometry"})
		} else if math.Abs(span.BankDegrees) > cfg.GetBankWarningDegrees() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: bank %.1f° exceeds warning threshold", i, span.BankDegrees), idx, "geometry"})
		}

		slope := math.Abs(span.ElevationDeltaMeters/span.LengthMeters) * 100
		if slope > cfg.GetSlopeErrorPercent() {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("span %d: slope %.1f%% exceeds error threshold", i, slope), idx, "geometry"})
		} else if slope > cfg.GetSlopeWarningPercent() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: slope %.1f%% exceeds warning threshold", i, slope), idx, "geometry"})
		}

		if span.Kind == geometry.Clothoid {
			meanRadius := (math.Abs(span.StartRadiusMeters) + math.Abs(span.EndRadiusMeters)) / 2
			if meanRadius > 0 {
				ratio := span.LengthMeters / meanRadius
				if ratio < cfg.GetClothoidRatioWarningMin() || ratio > cfg.GetClothoidRatioWarningMax() {
					r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("span %d: clothoid length/mean-radius ratio %.2f out of range", i, ratio), idx, "geometry"})
				}
			}
		}
	}

	checkCurvatureContinuity(spans, lay.IsLoop(), cfg, r)

	total := lay.PrimaryRouteLengthMeters()
	if total < cfg.GetMinTotalLengthWarningMeters() {
		r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("total route length %.1fm is short", total), nil, "geometry"})
	}
}

func spanMinRadius(s geometry.Span) (float64, bool) {
	switch s.Kind {
	case geometry.Arc:
		return s.RadiusMeters, true
	case geometry.Clothoid:
		return math.Min(math.Abs(s.StartRadiusMeters), math.Abs(s.EndRadiusMeters)), true
	default:
		return 0, false
	}
}

// checkCurvatureContinuity compares each span's end curvature against
// the next span's start curvature, wrapping modularly span N-1 -> 0
// for loops. If cfg opts out of the wrap-around check for open
// routes, that final pair is skipped — a deliberate, documented
// deviation from the source's always-modular behaviour.
func checkCurvatureContinuity(spans []geometry.Span, isLoop bool, cfg *config.ValidatorConfig, r *Report) {
	n := len(spans)
	if n < 2 {
		return
	}
	pairs := n - 1
	if isLoop || !cfg.GetSkipLoopWrapCurvatureCheck() {
		pairs = n
	}
	for i := 0; i < pairs; i++ {
		j := (i + 1) % n
		jump := math.Abs(spans[i].EndCurvature - spans[j].StartCurvature)
		if jump > cfg.GetCurvatureJumpError() {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("curvature jump %.4f between span %d and %d exceeds error threshold", jump, i, j), intPtr(i), "geometry"})
		} else if jump > cfg.GetCurvatureJumpWarning() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("curvature jump %.4f between span %d and %d exceeds warning threshold", jump, i, j), intPtr(i), "geometry"})
		}
	}
}

func validateZones(lay *layout.TrackLayout, cfg *config.ValidatorConfig, r *Report) {
	total := lay.PrimaryRouteLengthMeters()

	checkZoneBounds := func(start, end float64, section string) {
		if start < 0 || end < 0 {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("%s zone [%.1f,%.1f) has a negative endpoint", section, start, end), nil, section})
		} else if end > total {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("%s zone [%.1f,%.1f) extends past route length %.1f", section, start, end, total), nil, section})
		}
	}

	for _, z := range lay.SurfaceZones() {
		checkZoneBounds(z.StartS, z.EndS, "surface")
	}
	for _, z := range lay.NoiseZones() {
		checkZoneBounds(z.StartS, z.EndS, "noise")
	}
	for _, z := range lay.WidthZones() {
		checkZoneBounds(z.StartS, z.EndS, "width")
		if z.Value.Width < cfg.GetWidthErrorMeters() {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("width zone [%.1f,%.1f) width %.1fm below error threshold", z.StartS, z.EndS, z.Value.Width), nil, "width"})
		} else if z.Value.Width < cfg.GetWidthWarningMeters() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("width zone [%.1f,%.1f) width %.1fm below warning threshold", z.StartS, z.EndS, z.Value.Width), nil, "width"})
		}
	}
	for _, z := range lay.SpeedZones() {
		checkZoneBounds(z.StartS, z.EndS, "speed")
		if z.Value < cfg.GetSpeedLimitWarningKPH() {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("speed zone [%.1f,%.1f) limit %.1f kph below warning threshold", z.StartS, z.EndS, z.Value), nil, "speed"})
		}
	}
}

func validateMarkers(lay *layout.TrackLayout, r *Report) {
	total := lay.PrimaryRouteLengthMeters()
	for _, m := range lay.Markers() {
		if m.PositionS < 0 || m.PositionS > total {
			r.Issues = append(r.Issues, Issue{Error, fmt.Sprintf("marker %q at %.1f is outside [0,%.1f]", m.Name, m.PositionS, total), nil, "markers"})
		}
	}
}

func validateOverlaps(lay *layout.TrackLayout, cfg *config.ValidatorConfig, r *Report) {
	if cfg.GetAllowZoneOverlap() {
		return
	}
	checkOverlap(boundsOf(lay.SurfaceZones()), "surface", r)
	checkOverlap(boundsOf(lay.NoiseZones()), "noise", r)
	checkOverlap(widthBoundsOf(lay.WidthZones()), "width", r)
	checkOverlap(speedBoundsOf(lay.SpeedZones()), "speed", r)
}

type bounds struct{ start, end float64 }

func boundsOf(zones []route.RouteZone[string]) []bounds {
	out := make([]bounds, len(zones))
	for i, z := range zones {
		out[i] = bounds{z.StartS, z.EndS}
	}
	return out
}

func widthBoundsOf(zones []route.RouteZone[profile.WidthZone]) []bounds {
	out := make([]bounds, len(zones))
	for i, z := range zones {
		out[i] = bounds{z.StartS, z.EndS}
	}
	return out
}

func speedBoundsOf(zones []route.RouteZone[float64]) []bounds {
	out := make([]bounds, len(zones))
	for i, z := range zones {
		out[i] = bounds{z.StartS, z.EndS}
	}
	return out
}

func checkOverlap(bs []bounds, section string, r *Report) {
	if len(bs) < 2 {
		return
	}
	sorted := make([]bounds, len(bs))
	copy(sorted, bs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i+1].start < sorted[i].end {
			r.Issues = append(r.Issues, Issue{Warning, fmt.Sprintf("%s zones [%.1f,%.1f) and [%.1f,%.1f) overlap", section, sorted[i].start, sorted[i].end, sorted[i+1].start, sorted[i+1].end), nil, section})
		}
	}
}
