// Package controller owns the single-viewer stateful cursor over a
// TrackLayout: current-road resolution, announcement lookahead, and
// the noise sub-state machine. It is the only mutable piece of the
// track model; everything it reads is immutable after construction.
package controller

import (
	"math"

	"github.com/diamondStar35/top-speed-sub005/internal/monitoring"
	"github.com/diamondStar35/top-speed-sub005/internal/track/geometry"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
	"github.com/diamondStar35/top-speed-sub005/internal/units"
)

// defaultCallLengthMeters approximates the distance travelled during
// one announcement call; it pads the lookahead so a cue fires before
// the event it describes, not on top of it.
const defaultCallLengthMeters = 10.0

// Noise kinds the legacy format encodes as plain strings;
// oneShotNoises and noisePanConstants just below classify them.
const (
	NoNoise    = "none"
	Ocean      = "ocean"
	Clock      = "clock"
	Runway     = "runway"
	Jet        = "jet"
	Thunder    = "thunder"
	Helicopter = "helicopter"
	Owl        = "owl"
)

var oneShotNoises = map[string]bool{
	Runway: true, Jet: true, Thunder: true, Helicopter: true, Owl: true,
}

var noisePanConstants = map[string]float64{
	Ocean: -0.10,
	Clock: 0.25,
}

// Mode selects next_road's lookahead strategy.
type Mode int

const (
	// ModeBoundary fires when the current edge's end boundary falls
	// within the call-length window since the last tick.
	ModeBoundary Mode = iota
	// ModeAdaptive scales the lookahead distance with speed.
	ModeAdaptive
)

// Road is the current/next road segment surfaced to the announcer.
type Road struct {
	Left, Right   float64
	Surface       string
	Kind          geometry.Kind
	Direction     geometry.CurveDirection
	Severity      geometry.Severity
	LengthMeters  float64
	SpeedLimitMPS float64
	HasSpeedLimit bool
}

// AudioEvent is the event handed to the external audio collaborator:
// a noise kind, a volume, an optional pan and a loop flag. It carries
// no route position. The core never inspects its outcome.
type AudioEvent struct {
	NoiseKind string
	Volume    float64
	Pan       *float64
	Loop      bool
}

// AudioSink receives controller-driven audio events. NopAudioSink
// discards everything and is the default.
type AudioSink interface {
	Play(AudioEvent)
	Stop(kind string)
}

// NopAudioSink implements AudioSink with no side effects.
type NopAudioSink struct{}

func (NopAudioSink) Play(AudioEvent) {}
func (NopAudioSink) Stop(string)     {}

// noiseState is the {Idle, Playing} sub-state machine.
type noiseState int

const (
	noiseIdle noiseState = iota
	noisePlayingState
)

// Controller is the per-viewer stateful cursor. It is single-owner:
// separate drivers must hold separate Controllers.
type Controller struct {
	Layout           *layout.TrackLayout
	Audio            AudioSink
	CallLengthMeters float64

	lapDistance            float64
	cursorS                float64
	relS                   float64
	prevRelS               float64
	currentEdgeIndex       int
	lastAnnouncedEdgeIndex int

	currentNoise string
	noiseStartS  float64
	noiseEndS    float64
	state        noiseState
	oneShotFired bool
}

// New builds a Controller bound to lay. audio may be nil, in which
// case events are discarded.
func New(lay *layout.TrackLayout, audio AudioSink) *Controller {
	if audio == nil {
		audio = NopAudioSink{}
	}
	c := &Controller{Layout: lay, Audio: audio, CallLengthMeters: defaultCallLengthMeters}
	c.initialize()
	return c
}

// initialize computes lap_distance from the layout, resets the
// cursor, and starts weather/ambience looping sounds.
func (c *Controller) initialize() {
	c.lapDistance = c.Layout.PrimaryRouteLengthMeters()
	c.cursorS = 0
	c.relS = 0
	c.prevRelS = 0
	c.currentEdgeIndex = 0
	c.lastAnnouncedEdgeIndex = 0
	c.currentNoise = NoNoise
	c.noiseStartS = 0
	c.noiseEndS = 0
	c.state = noiseIdle
	c.oneShotFired = false

	monitoring.Logf("controller: initialized, lap_distance=%.1fm", c.lapDistance)
	c.Audio.Play(AudioEvent{NoiseKind: "ambience:" + ambienceName(c.Layout.Ambience), Loop: true})
	c.Audio.Play(AudioEvent{NoiseKind: "weather:" + weatherName(c.Layout.Weather), Loop: true})
}

func ambienceName(a layout.Ambience) string {
	switch a {
	case layout.Desert:
		return "desert"
	case layout.Airport:
		return "airport"
	default:
		return "none"
	}
}

func weatherName(w layout.Weather) string {
	switch w {
	case layout.Rain:
		return "rain"
	case layout.Wind:
		return "wind"
	case layout.Storm:
		return "storm"
	default:
		return "sunny"
	}
}

// spanAt returns the flattened-geometry span whose range contains
// route-s s.
func (c *Controller) spanAt(s float64) geometry.Span {
	built := c.Layout.BuiltGeometry()
	spans := built.Spans()
	if len(spans) == 0 {
		return geometry.Span{}
	}
	total := built.TotalLengthMeters()
	rs := resolveRouteS(s, total, c.Layout.IsLoop())
	for i := len(spans) - 1; i >= 0; i-- {
		if rs >= built.SpanStart(i) {
			return spans[i]
		}
	}
	return spans[0]
}

func resolveRouteS(s, total float64, isLoop bool) float64 {
	if total <= 0 {
		return 0
	}
	if isLoop {
		m := math.Mod(s, total)
		if m < 0 {
			m += total
		}
		return m
	}
	if s < 0 {
		return 0
	}
	if s > total {
		return total
	}
	return s
}

func roadFromSpan(span geometry.Span, width float64, surface string) Road {
	r := Road{Left: -width / 2, Right: width / 2, Surface: surface, Kind: span.Kind, LengthMeters: span.LengthMeters}
	if span.CurveDirection != nil {
		r.Direction = *span.CurveDirection
	}
	if span.CurveSeverity != nil {
		r.Severity = *span.CurveSeverity
	}
	return r
}

// roadAt resolves s to a Road without consulting or mutating cursor
// state.
func (c *Controller) roadAt(s float64) Road {
	width := c.Layout.WidthAt(s)
	surface := c.Layout.SurfaceAt(s)
	span := c.spanAt(s)
	r := roadFromSpan(span, width, surface)
	if kph, ok := c.Layout.TrySpeedLimit(s); ok {
		r.SpeedLimitMPS = units.KphToMps(kph)
		r.HasSpeedLimit = true
	}
	return r
}

// RoadAtPosition resolves the current span/edge at s, updates the
// cursor (prev_rel_s <- rel_s; rel_s, current_edge_index written),
// and returns the current Road.
func (c *Controller) RoadAtPosition(s float64) Road {
	edgeIndex, localS := c.Layout.ResolvePrimaryEdge(s)
	c.cursorS = s
	c.prevRelS = c.relS
	c.relS = localS
	c.currentEdgeIndex = edgeIndex
	return c.roadAt(s)
}

// RoadComputer performs the same resolution as RoadAtPosition without
// mutating cursor state, for AI/oracle queries.
func (c *Controller) RoadComputer(s float64) Road {
	return c.roadAt(s)
}

// currentEdgeLength returns the length of the edge the cursor is
// currently on, or 0 if there is no primary route.
func (c *Controller) currentEdgeLength() float64 {
	e := c.Layout.EdgeAt(c.currentEdgeIndex)
	if e == nil {
		return 0
	}
	return e.LengthMeters()
}

// NextRoad implements the announcement lookahead. Mode 0 fires when
// the current edge's end boundary falls within the call-length window
// since the last tick; Mode 1 scales lookahead with speed and fires
// when the forward edge delta lies in (0, N/2].
func (c *Controller) NextRoad(s, speedMetersPerSec float64, mode Mode) (Road, bool) {
	switch mode {
	case ModeBoundary:
		boundary := c.currentEdgeLength()
		lo := c.prevRelS + c.CallLengthMeters
		hi := c.relS + c.CallLengthMeters
		if boundary > lo && boundary <= hi {
			nextIdx := (c.currentEdgeIndex + 1) % c.Layout.EdgeCount()
			start, _ := c.Layout.ResolvePrimaryEdgeBounds(nextIdx)
			return c.roadAt(start), true
		}
		return Road{}, false

	case ModeAdaptive:
		lookahead := c.CallLengthMeters + speedMetersPerSec/2
		edgeIndex, _ := c.Layout.ResolvePrimaryEdge(s + lookahead)
		n := c.Layout.EdgeCount()
		if n == 0 {
			return Road{}, false
		}
		delta := ((edgeIndex-c.lastAnnouncedEdgeIndex)%n + n) % n
		if delta > 0 && delta <= n/2 {
			c.lastAnnouncedEdgeIndex = edgeIndex
			start, _ := c.Layout.ResolvePrimaryEdgeBounds(edgeIndex)
			return c.roadAt(start), true
		}
		return Road{}, false
	}
	return Road{}, false
}

// Run advances the noise sub-state machine to s. When the prevailing
// noise kind changes, the noise window is reset by scanning the
// layout's noise zones for the one containing s (or [0, lap_distance)
// if the default matches). While inside the window it computes a
// triangular volume envelope and emits one-shot or looping play
// events through the audio sink.
func (c *Controller) Run(s float64) {
	kind := c.Layout.NoiseAt(s)

	if kind != c.currentNoise {
		c.transitionNoise(kind, s)
	}

	if c.state == noiseIdle {
		return
	}

	length := c.noiseEndS - c.noiseStartS
	if s > c.noiseEndS || length <= 0 {
		c.stopNoise()
		return
	}

	u := (s - c.noiseStartS) / length
	factor := math.Min(u, 1-u) * 2
	if factor < 0 {
		factor = 0
	}
	volume := 0.80 + factor*0.20

	if oneShotNoises[kind] {
		if c.oneShotFired {
			return
		}
		c.oneShotFired = true
		c.Audio.Play(c.noiseEvent(kind, volume, false))
		return
	}
	c.Audio.Play(c.noiseEvent(kind, volume, true))
}

func (c *Controller) transitionNoise(kind string, s float64) {
	if c.state == noisePlayingState {
		c.stopNoise()
	}
	c.currentNoise = kind
	c.oneShotFired = false

	if kind == NoNoise {
		c.state = noiseIdle
		return
	}

	start, end, found := c.findNoiseWindow(kind, s)
	if !found {
		start, end = 0, c.lapDistance
	}
	c.noiseStartS, c.noiseEndS = start, end
	c.state = noisePlayingState
}

// findNoiseWindow scans the layout's noise zones in route order for
// the one containing s whose value matches kind.
func (c *Controller) findNoiseWindow(kind string, s float64) (start, end float64, found bool) {
	for _, z := range c.Layout.NoiseZones() {
		if z.Value == kind && s >= z.StartS && s < z.EndS {
			return z.StartS, z.EndS, true
		}
	}
	return 0, 0, false
}

func (c *Controller) stopNoise() {
	if c.state == noisePlayingState {
		c.Audio.Stop(c.currentNoise)
	}
	c.state = noiseIdle
}

func (c *Controller) noiseEvent(kind string, volume float64, loop bool) AudioEvent {
	ev := AudioEvent{NoiseKind: kind, Volume: volume, Loop: loop}
	if pan, ok := noisePanConstants[kind]; ok {
		p := pan
		ev.Pan = &p
	}
	return ev
}
