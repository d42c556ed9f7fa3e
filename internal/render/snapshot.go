package render

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockTracker/internal/chart"
	"StockTracker/internal/model"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 480
)

// SnapshotOptions controls a PNG snapshot. Hover < 0 draws no overlay.
type SnapshotOptions struct {
	Width   int
	Height  int
	Hover   int
	Visible chart.Visibility
}

// Snapshot paints the chart as a PNG: price lines on the right axis, volume bars
// along the bottom, and the hover overlay when Hover is set.
func Snapshot(w io.Writer, c *chart.Chart, o SnapshotOptions) error {
	if c == nil || !c.Store().HasData() {
		return fmt.Errorf("render snapshot: no data")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Visible == nil {
		o.Visible = chart.NewVisibility()
	}

	win := c.Window()
	// Scale only, the area is replaced by the canvas box at draw time.
	geo := c.Geometry(chart.Area{}, o.Visible)
	xMin, xMax, ticks := xAxis(c, win)

	var series []gochart.Series
	for _, ds := range c.Datasets {
		if ds.Kind != chart.KindLine || !o.Visible.Visible(ds.Series) {
			continue
		}
		xs, ys := windowValues(ds.Data, win)
		if len(xs) == 1 {
			xs = append(xs, xs[0]+0.001)
			ys = append(ys, ys[0])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: toColor(ds.Color),
				StrokeWidth: ds.BorderWidth * 2,
			},
		})
	}

	graph := gochart.Chart{
		Width:      o.Width,
		Height:     o.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 16, Left: 16, Right: 80, Bottom: 40}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: geo.Y.Min, Max: geo.Y.Max},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.FormatFixed(f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{
		volumeBars(c, win),
		overlay(c, o.Hover, o.Visible, geo),
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	return nil
}

// xAxis returns the x range and ticks of the window. go-chart takes the range
// from the first and last tick, so blank ticks pin both ends of the range when
// the labelled ticks do not reach them.
func xAxis(c *chart.Chart, win chart.Window) (lo, hi float64, ticks []gochart.Tick) {
	lo, hi = float64(win.Min), float64(win.Max)
	if win.Min == win.Max {
		lo, hi = lo-0.5, hi+0.5
	}
	for _, i := range c.XTicks() {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c.Labels[i]})
	}
	if len(ticks) == 0 || ticks[0].Value > lo {
		ticks = append([]gochart.Tick{{Value: lo}}, ticks...)
	}
	if ticks[len(ticks)-1].Value < hi {
		ticks = append(ticks, gochart.Tick{Value: hi})
	}
	return lo, hi, ticks
}

func windowValues(data []float64, win chart.Window) (xs, ys []float64) {
	for i := win.Min; i <= win.Max && i < len(data); i++ {
		xs = append(xs, float64(i))
		ys = append(ys, data[i])
	}
	return xs, ys
}

func area(box gochart.Box) chart.Area {
	return chart.Area{
		Left:   float64(box.Left),
		Top:    float64(box.Top),
		Right:  float64(box.Right),
		Bottom: float64(box.Bottom),
	}
}

// volumeBars draws the volume dataset against the hidden volume axis.
func volumeBars(c *chart.Chart, win chart.Window) gochart.Renderable {
	return func(r gochart.Renderer, box gochart.Box, _ gochart.Style) {
		ds, ok := c.Dataset(chart.SeriesVolume)
		if !ok || c.VolumeAxis.Max <= 0 {
			return
		}
		a := area(box)
		xs := chart.IndexScale{Min: win.Min, Max: win.Max, Left: a.Left, Right: a.Right}
		ys := chart.LinearScale{Min: c.VolumeAxis.Min, Max: c.VolumeAxis.Max, Top: a.Top, Bottom: a.Bottom}
		half := xs.PixelsPerIndex() * 0.4
		if half < 0.5 {
			half = 0.5
		}
		r.SetFillColor(toColor(ds.Color))
		r.SetStrokeWidth(0)
		for i := win.Min; i <= win.Max && i < len(ds.Data); i++ {
			x := xs.Pixel(i)
			top := ys.Pixel(ds.Data[i])
			r.MoveTo(int(x-half), int(a.Bottom))
			r.LineTo(int(x-half), int(top))
			r.LineTo(int(x+half), int(top))
			r.LineTo(int(x+half), int(a.Bottom))
			r.Close()
			r.Fill()
		}
	}
}

// rendererMeasurer measures text with the renderer's current font.
type rendererMeasurer struct {
	r gochart.Renderer
}

func (m rendererMeasurer) MeasureText(text string) float64 {
	return float64(m.r.MeasureText(text).Width())
}

// overlay paints the crosshair, the date box and the value boxes.
func overlay(c *chart.Chart, hover int, visible chart.Visibility, geo chart.Geometry) gochart.Renderable {
	return func(r gochart.Renderer, box gochart.Box, defaults gochart.Style) {
		if hover < 0 {
			return
		}
		a := area(box)
		g := chart.Geometry{
			Area: a,
			X:    chart.IndexScale{Min: geo.X.Min, Max: geo.X.Max, Left: a.Left, Right: a.Right},
			Y:    chart.LinearScale{Min: geo.Y.Min, Max: geo.Y.Max, Top: a.Top, Bottom: a.Bottom},
		}
		r.SetFont(defaults.GetFont())
		r.SetFontSize(chart.LabelFontSize)
		ov, ok := chart.ComputeOverlayLayout(hover, c.Store(), visible, g, rendererMeasurer{r})
		if !ok {
			return
		}

		ch := ov.Crosshair
		r.SetStrokeColor(toColor(ch.Color))
		r.SetStrokeWidth(ch.Width)
		r.SetStrokeDashArray(ch.Dash)
		for _, s := range []chart.Segment{ch.Vertical, ch.Horizontal} {
			r.MoveTo(int(s.From.X), int(s.From.Y))
			r.LineTo(int(s.To.X), int(s.To.Y))
			r.Stroke()
		}
		r.SetStrokeDashArray(nil)

		labelBox(r, ov.DateBox)
		for _, l := range ov.Labels {
			labelBox(r, l)
		}
	}
}

// boxStyle fills a label box with its series colour and writes the text in the
// chart background colour.
func boxStyle(l chart.LabelBox) (fill, text drawing.Color) {
	return toColor(l.Color), toColor(chart.FillColor)
}

func labelBox(r gochart.Renderer, l chart.LabelBox) {
	x0, y0 := int(l.Box.X), int(l.Box.Y)
	x1, y1 := int(l.Box.X+l.Box.W), int(l.Box.Y+l.Box.H)
	fill, text := boxStyle(l)
	r.SetFillColor(fill)
	r.SetStrokeWidth(0)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()

	r.SetFontColor(text)
	tx := int(l.Box.X + chart.BoxPadding/2)
	// Text is drawn from its baseline.
	ty := int(l.TextAt.Y + chart.LabelFontSize/2 - 1)
	r.Text(l.Text, tx, ty)
}

// SnapshotPayload builds a chart for payload and paints it.
func SnapshotPayload(w io.Writer, p *model.ChartPayload, o SnapshotOptions) error {
	store := chart.NewSeriesStore()
	store.Replace(p)
	return Snapshot(w, chart.NewChart(store, false), o)
}
