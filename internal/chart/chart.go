// Package chart plots observed parameter values against their acceptable range.
package chart

import (
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Options sizes the rendered chart.
type Options struct {
	Format string
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 420
	}
	return o
}

// ContentType returns the MIME type for a chart format.
func ContentType(format string) string {
	if strings.EqualFold(format, FormatSVG) {
		return "image/svg+xml"
	}
	return "image/png"
}

func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor:     col,
		StrokeWidth:     2,
		StrokeDashArray: []float64{6, 4},
	}
}

// observedPoints returns one point per row with an observed value, at the
// row's position.
func observedPoints(verdicts []model.ParameterVerdict) (xs, ys []float64) {
	for i, v := range verdicts {
		if v.Observed == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *v.Observed)
	}
	return xs, ys
}

// rowRange spans n row positions with half a slot of padding on each side,
// so a single row still has a non-empty x range.
func rowRange(n int) *gochart.ContinuousRange {
	return &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5}
}

// Render plots one parameter across compared rows: the observed value of
// each row as points, and the min and max bounds as dashed lines. Rows with
// a missing value are left out of the point series.
func Render(w io.Writer, res model.ComparisonResult, parameter string, opts Options) error {
	opts = opts.withDefaults()

	verdicts, ok := res.PerParameter[parameter]
	if !ok || len(verdicts) == 0 {
		return eris.Errorf("chart: no verdicts for parameter %q", parameter)
	}

	xs, ys := observedPoints(verdicts)
	if len(xs) == 0 {
		return eris.Errorf("chart: parameter %q has no observed values", parameter)
	}

	lo, hi := verdicts[0].Min, verdicts[0].Max
	xRange := rowRange(len(verdicts))
	bounds := []float64{xRange.Min, xRange.Max}

	ticks := make([]gochart.Tick, 0, len(res.Rows))
	for i, r := range res.Rows {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: r.Label()})
	}

	yMin, yMax := lo, hi
	for _, y := range ys {
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}
	pad := (yMax - yMin) * 0.1
	if pad == 0 {
		pad = 1
	}

	ch := gochart.Chart{
		Title:      parameter,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "row", Ticks: ticks, Range: xRange},
		YAxis: gochart.YAxis{
			Name:  parameter,
			Range: &gochart.ContinuousRange{Min: yMin - pad, Max: yMax + pad},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: "observed", XValues: xs, YValues: ys, Style: pointStyle(gochart.ColorBlue)},
			gochart.ContinuousSeries{Name: "min", XValues: bounds, YValues: []float64{lo, lo}, Style: lineStyle(gochart.ColorRed)},
			gochart.ContinuousSeries{Name: "max", XValues: bounds, YValues: []float64{hi, hi}, Style: lineStyle(gochart.ColorRed)},
		},
	}
	if len(ticks) < 2 {
		ch.XAxis.Ticks = nil
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	provider := gochart.PNG
	if strings.EqualFold(opts.Format, FormatSVG) {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return eris.Wrap(err, "chart: render")
	}
	return nil
}
