// Package diagviz renders a built TrackLayout's route-s profile as a
// static PNG or a self-contained HTML page. It is strictly read-only
// and best-effort: it observes already-computed layout data and never
// feeds back into the model or sits on a query path.
package diagviz

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/diamondStar35/top-speed-sub005/internal/monitoring"
	"github.com/diamondStar35/top-speed-sub005/internal/track/layout"
)

const defaultSampleStepMeters = 2.0

// profileSample is one evenly-spaced sample of the route-s profile.
type profileSample struct {
	s         float64
	curvature float64
	elevation float64
}

func sampleProfile(lay *layout.TrackLayout, step float64) []profileSample {
	if step <= 0 {
		step = defaultSampleStepMeters
	}
	total := lay.PrimaryRouteLengthMeters()
	built := lay.BuiltGeometry()
	n := int(math.Ceil(total / step))
	if n < 1 {
		n = 1
	}

	samples := make([]profileSample, 0, n+1)
	for i := 0; i <= n; i++ {
		s := math.Min(float64(i)*step, total)
		pose := built.Pose(s)
		samples = append(samples, profileSample{s: s, curvature: pose.Curvature, elevation: pose.Position.Y})
	}
	return samples
}

// surfaceBand is one contiguous run of a surface (or noise) zone value
// over [StartS, EndS); RenderPNG reports the band counts in its title.
type surfaceBand struct {
	startS, endS float64
	label        string
}

func surfaceBands(lay *layout.TrackLayout) []surfaceBand {
	return bandsFromSamples(lay, lay.SurfaceAt)
}

func noiseBands(lay *layout.TrackLayout) []surfaceBand {
	return bandsFromSamples(lay, lay.NoiseAt)
}

func bandsFromSamples(lay *layout.TrackLayout, at func(float64) string) []surfaceBand {
	total := lay.PrimaryRouteLengthMeters()
	const step = 1.0
	n := int(math.Ceil(total / step))
	if n < 1 {
		n = 1
	}

	var bands []surfaceBand
	var current *surfaceBand
	for i := 0; i < n; i++ {
		s := float64(i) * step
		label := at(s)
		if current != nil && current.label == label {
			current.endS = s + step
			continue
		}
		if current != nil {
			bands = append(bands, *current)
		}
		current = &surfaceBand{startS: s, endS: s + step, label: label}
	}
	if current != nil {
		bands = append(bands, *current)
	}
	return bands
}

// RenderPNG draws the route-s profile — curvature and elevation lines,
// with the surface/noise band counts in the title — as a PNG and writes
// it to w. The bands themselves are not drawn.
func RenderPNG(lay *layout.TrackLayout, w io.Writer) error {
	samples := sampleProfile(lay, defaultSampleStepMeters)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("route profile: %s (%d surface band(s), %d noise band(s))",
		lay.Metadata.Name, len(surfaceBands(lay)), len(noiseBands(lay)))
	p.X.Label.Text = "route-s (m)"
	p.Y.Label.Text = "curvature (1/m) / elevation (m)"

	curvaturePts := make(plotter.XYs, len(samples))
	elevationPts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		curvaturePts[i] = plotter.XY{X: s.s, Y: s.curvature}
		elevationPts[i] = plotter.XY{X: s.s, Y: s.elevation}
	}

	curvatureLine, err := plotter.NewLine(curvaturePts)
	if err != nil {
		return fmt.Errorf("diagviz: curvature line: %w", err)
	}
	curvatureLine.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	curvatureLine.Width = vg.Points(1.2)
	p.Add(curvatureLine)
	p.Legend.Add("curvature", curvatureLine)

	elevationLine, err := plotter.NewLine(elevationPts)
	if err != nil {
		return fmt.Errorf("diagviz: elevation line: %w", err)
	}
	elevationLine.Color = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	elevationLine.Width = vg.Points(1.2)
	p.Add(elevationLine)
	p.Legend.Add("elevation", elevationLine)

	p.Legend.Top = true

	writerTo, err := p.WriterTo(12*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("diagviz: writer: %w", err)
	}
	if _, err := writerTo.WriteTo(w); err != nil {
		return fmt.Errorf("diagviz: write png: %w", err)
	}
	monitoring.Logf("diagviz: rendered PNG route profile for %q (%d samples)", lay.Metadata.Name, len(samples))
	return nil
}

// RenderHTML draws an interactive route-s profile — the curvature line,
// with the speed-limit band count in the subtitle — as a self-contained
// go-echarts page. The bands themselves are not drawn.
func RenderHTML(lay *layout.TrackLayout, w io.Writer) error {
	samples := sampleProfile(lay, defaultSampleStepMeters)

	curvatureData := make([]opts.LineData, len(samples))
	xAxis := make([]string, len(samples))
	for i, s := range samples {
		curvatureData[i] = opts.LineData{Value: s.curvature}
		xAxis[i] = fmt.Sprintf("%.0f", s.s)
	}

	bands := speedBands(lay)
	subtitle := lay.Metadata.Name
	if len(bands) > 0 {
		subtitle = fmt.Sprintf("%s — %d speed-limited zone(s)", subtitle, len(bands))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track profile", Theme: "dark", Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track profile", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "route-s (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "curvature (1/m)"}),
	)
	line.SetXAxis(xAxis).AddSeries("curvature", curvatureData)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("diagviz: render html: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("diagviz: write html: %w", err)
	}
	monitoring.Logf("diagviz: rendered HTML route profile for %q (%d samples)", lay.Metadata.Name, len(samples))
	return nil
}

func speedBands(lay *layout.TrackLayout) []surfaceBand {
	var bands []surfaceBand
	for _, z := range lay.SpeedZones() {
		bands = append(bands, surfaceBand{startS: z.StartS, endS: z.EndS, label: fmt.Sprintf("%.0f kph", z.Value)})
	}
	return bands
}
