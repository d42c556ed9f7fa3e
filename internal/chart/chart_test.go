package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTracker/internal/model"
)

func examplePayload() *model.ChartPayload {
	return &model.ChartPayload{
		DateData:       []string{"2024-01-01", "2024-01-02"},
		ClosePriceData: []float64{10.004, 10.5},
		VolumeData:     []float64{100, 200},
		EMAData:        false,
		ChangePerc:     5,
	}
}

func emaPayload(n int) *model.ChartPayload {
	p := &model.ChartPayload{EMAData: true}
	for i := 0; i < n; i++ {
		p.DateData = append(p.DateData, "2024-01-01")
		c := 100 + float64(i)
		p.ClosePriceData = append(p.ClosePriceData, c)
		p.VolumeData = append(p.VolumeData, float64(1000*(i+1)))
		p.EMA30Data = append(p.EMA30Data, c-1)
		p.EMA50Data = append(p.EMA50Data, c-2)
		p.EMA200Data = append(p.EMA200Data, c-3)
	}
	return p
}

func storeOf(p *model.ChartPayload) *SeriesStore {
	s := NewSeriesStore()
	s.Replace(p)
	return s
}

func TestNewChartPointCounts(t *testing.T) {
	for _, p := range []*model.ChartPayload{examplePayload(), emaPayload(40)} {
		c := NewChart(storeOf(p), false)
		wantSets := 2
		if p.EMAData {
			wantSets = 5
		}
		require.Len(t, c.Datasets, wantSets)
		for label, n := range c.PointCount() {
			assert.Equal(t, len(p.DateData), n, label)
		}
	}
}

func TestNewChartAxes(t *testing.T) {
	c := NewChart(storeOf(emaPayload(10)), false)
	assert.Equal(t, 10000.0*VolumeAxisMaxMultiplier, c.VolumeAxis.Max)
	assert.Zero(t, c.VolumeAxis.Min)
	assert.False(t, c.VolumeAxis.Display)
	assert.Equal(t, "right", c.PriceAxis.Position)
	assert.Equal(t, "index", c.Interaction.Mode)
	assert.False(t, c.Interaction.Intersect)
	assert.Equal(t, ZoomMinRange, c.ZoomOptions.MinRange)

	vol, ok := c.Dataset(SeriesVolume)
	require.True(t, ok)
	assert.Equal(t, KindBar, vol.Kind)
	assert.Equal(t, VolumeAxis, vol.Axis)
}

func TestSeriesStoreReplaceInPlace(t *testing.T) {
	s := storeOf(emaPayload(3))
	first := &s.Close[0]

	s.Replace(examplePayload())
	require.Equal(t, 2, s.Len())
	assert.Same(t, first, &s.Close[0])
	assert.Equal(t, []float64{10.004, 10.5}, s.Close)
	assert.False(t, s.HasEMA)
	assert.Empty(t, s.EMA30)
	assert.Nil(t, s.Values(SeriesEMA30))
	assert.Equal(t, 1, s.Last())
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10.004, "10.00"},
		{10.5, "10.50"},
		{1234.5, "1,234.50"},
		{-1234567.891, "-1,234,567.89"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in))
	}
	assert.Equal(t, "1,200,000", FormatVolume(1200000))
	assert.Equal(t, "1234.50", FormatFixed(1234.5))
}

func TestChangeBadge(t *testing.T) {
	tests := []struct {
		in    float64
		text  string
		color string
	}{
		{0, "+0.00%", PositiveColor},
		{5, "+5.00%", PositiveColor},
		{-3.25, "-3.25%", NegativeColor},
	}
	for _, tt := range tests {
		b := ChangeBadge(tt.in)
		assert.Equal(t, tt.text, b.Text)
		assert.Equal(t, tt.color, b.Color)
	}
}

func TestReadoutAt(t *testing.T) {
	s := storeOf(examplePayload())

	r := ReadoutAt(s, -1)
	assert.Equal(t, "2024-01-02", r.Date)
	assert.Equal(t, "10.50", r.ClosePrice)
	assert.Equal(t, "200", r.Volume)
	assert.Equal(t, DataMissingText, r.EMA30)

	assert.Equal(t, "10.00", ReadoutAt(s, 0).ClosePrice)
	assert.Equal(t, EmptyReadout(), ReadoutAt(s, 5))
	assert.Equal(t, "Close-Price: 10.50", ReadoutAt(s, 1).Lines()[1])

	e := storeOf(emaPayload(3))
	assert.Equal(t, "100.00", ReadoutAt(e, 1).EMA30)
}

func TestComputeOverlayLayout(t *testing.T) {
	s := storeOf(&model.ChartPayload{
		DateData:       []string{"a", "b", "2024-03-01", "d", "e"},
		ClosePriceData: []float64{2, 4, 6, 8, 10},
		VolumeData:     []float64{1, 1, 1, 1, 1},
		EMAData:        true,
		EMA30Data:      []float64{1, 2, 3, 4, 5},
		EMA50Data:      []float64{1, 2, 3, 4, 5},
		EMA200Data:     []float64{1, 2, 5, 4, 5},
	})
	geo := Geometry{
		Area: Area{Left: 0, Top: 0, Right: 100, Bottom: 100},
		X:    IndexScale{Min: 0, Max: 4, Left: 0, Right: 100},
		Y:    LinearScale{Min: 0, Max: 10, Top: 0, Bottom: 100},
	}
	m := FixedWidthMeasurer(7)

	_, ok := ComputeOverlayLayout(-1, s, NewVisibility(), geo, m)
	assert.False(t, ok)

	o, ok := ComputeOverlayLayout(2, s, NewVisibility(), geo, m)
	require.True(t, ok)
	assert.InDelta(t, 50, o.Crosshair.Vertical.From.X, 1e-9)
	assert.Equal(t, 0.0, o.Crosshair.Vertical.From.Y)
	assert.Equal(t, 100.0, o.Crosshair.Vertical.To.Y)
	assert.InDelta(t, 40, o.Crosshair.Horizontal.From.Y, 1e-9)
	assert.Equal(t, 100.0, o.Crosshair.Horizontal.To.X)
	assert.Equal(t, []float64{5, 5}, o.Crosshair.Dash)

	assert.Equal(t, "2024-03-01", o.DateBox.Text)
	assert.Equal(t, AlignCenter, o.DateBox.Align)
	assert.InDelta(t, 118, o.DateBox.TextAt.Y, 1e-9)
	assert.Equal(t, Rect{X: 13, Y: 110, W: 74, H: 16}, o.DateBox.Box)

	require.Len(t, o.Labels, 4)
	cl, ok := o.Label(SeriesClose)
	require.True(t, ok)
	assert.Equal(t, "6.00", cl.Text)
	assert.Equal(t, ClosePriceColor, cl.Color)
	assert.InDelta(t, 110, cl.TextAt.X, 1e-9)
	assert.InDelta(t, 108, cl.Box.X, 1e-9)
	assert.InDelta(t, 32, cl.Box.Y, 1e-9)
	assert.InDelta(t, 32, cl.Box.W, 1e-9)
	assert.InDelta(t, 16, cl.Box.H, 1e-9)

	ema200, ok := o.Label(SeriesEMA200)
	require.True(t, ok)
	assert.InDelta(t, 50, ema200.TextAt.Y, 1e-9)

	vis := NewVisibility()
	vis.Toggle(SeriesEMA50)
	o, ok = ComputeOverlayLayout(2, s, vis, geo, m)
	require.True(t, ok)
	assert.Len(t, o.Labels, 3)
	_, ok = o.Label(SeriesEMA50)
	assert.False(t, ok)
}

func TestOverlayOutsideWindow(t *testing.T) {
	s := storeOf(examplePayload())
	geo := Geometry{X: IndexScale{Min: 1, Max: 1}}
	_, ok := ComputeOverlayLayout(0, s, NewVisibility(), geo, nil)
	assert.False(t, ok)
}

func TestZoomKeepsMinimumRange(t *testing.T) {
	c := NewChart(storeOf(emaPayload(20)), false)
	assert.Equal(t, Window{Min: 0, Max: 19}, c.Window())

	c.Zoom(100, 10)
	w := c.Window()
	assert.Equal(t, ZoomMinRange, w.Span())
	assert.True(t, w.Min <= 10 && w.Max >= 10)

	c.Pan(100)
	assert.Equal(t, Window{Min: 14, Max: 19}, c.Window())
	c.Pan(-100)
	assert.Equal(t, Window{Min: 0, Max: 5}, c.Window())

	c.Zoom(0.01, 0)
	assert.Equal(t, Window{Min: 0, Max: 19}, c.Window())

	c.Zoom(2, 19)
	c.ResetZoom()
	assert.Equal(t, Window{Min: 0, Max: 19}, c.Window())
}

func TestZoomFewPoints(t *testing.T) {
	c := NewChart(storeOf(emaPayload(3)), false)
	c.Zoom(10, 1)
	assert.Equal(t, Window{Min: 0, Max: 2}, c.Window())
}

func TestXTicks(t *testing.T) {
	c := NewChart(storeOf(emaPayload(100)), false)
	ticks := c.XTicks()
	assert.LessOrEqual(t, len(ticks), MaxXTicks)
	assert.Equal(t, 0, ticks[0])

	c = NewChart(storeOf(examplePayload()), false)
	assert.Equal(t, []int{0, 1}, c.XTicks())
}

func TestHitTest(t *testing.T) {
	c := NewChart(storeOf(emaPayload(11)), false)
	geo := c.Geometry(Area{Left: 0, Top: 0, Right: 100, Bottom: 50}, NewVisibility())

	i, ok := c.HitTest(geo, 52, 10)
	require.True(t, ok)
	assert.Equal(t, 5, i)

	i, ok = c.HitTest(geo, 100, 10)
	require.True(t, ok)
	assert.Equal(t, 10, i)

	_, ok = c.HitTest(geo, 50, 80)
	assert.False(t, ok)
}

func TestGeometryPriceRange(t *testing.T) {
	c := NewChart(storeOf(emaPayload(11)), false)
	area := Area{Left: 0, Top: 0, Right: 100, Bottom: 100}

	geo := c.Geometry(area, NewVisibility())
	// lowest value is the 200-EMA at 97, highest the close at 110
	assert.InDelta(t, 97-0.65, geo.Y.Min, 1e-9)
	assert.InDelta(t, 110+0.65, geo.Y.Max, 1e-9)

	vis := NewVisibility()
	vis.Toggle(SeriesEMA200)
	vis.Toggle(SeriesEMA50)
	geo = c.Geometry(area, vis)
	assert.InDelta(t, 99-0.55, geo.Y.Min, 1e-9)
}

func TestTooltipLines(t *testing.T) {
	c := NewChart(storeOf(examplePayload()), true)
	assert.Equal(t, []string{"2024-01-02", "Close-Price: 10.50", "Volume: 200"}, c.TooltipLines(1, NewVisibility()))
	assert.Nil(t, c.TooltipLines(2, NewVisibility()))
}

func TestLegend(t *testing.T) {
	c := NewChart(storeOf(emaPayload(3)), false)
	vis := NewVisibility()
	items := Legend(c, vis)
	require.Len(t, items, 3)
	for _, it := range items {
		assert.True(t, it.Series.IsMovingAverage())
		assert.Equal(t, "none", it.TextDecoration())
	}

	assert.False(t, vis.Toggle(SeriesEMA30))
	items = Legend(c, vis)
	assert.True(t, items[0].Hidden)
	assert.Equal(t, "line-through", items[0].TextDecoration())

	assert.Empty(t, Legend(NewChart(storeOf(examplePayload()), false), vis))
}

func TestChangeTransparency(t *testing.T) {
	tests := []struct {
		color string
		alpha float64
		want  string
	}{
		{"rgba(78, 140, 255, 1)", 0.75, "rgba(78, 140, 255, 0.75)"},
		{"rgba(1,2,3,0.5)", 1, "rgba(1, 2, 3, 1)"},
		{"rgba(1, 2, 3, 0.5)", 2, "rgba(1, 2, 3, 1)"},
		{"rgba(1, 2, 3, 0.5)", -1, "rgba(1, 2, 3, 0)"},
		{"#ff0000", 0.5, "#ff0000"},
		{"rgb(1, 2, 3)", 0.5, "rgb(1, 2, 3)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChangeTransparency(tt.color, tt.alpha), tt.color)
	}
}

func TestNewSummaryChart(t *testing.T) {
	sc := NewSummaryChart("t", []SummaryBar{
		{Label: "a", Value: 10, Color: "rgba(1, 2, 3, 1)"},
		{Label: "b", Value: 20, Color: "blue"},
	})
	assert.InDelta(t, 8, sc.YMin, 1e-9)
	assert.InDelta(t, 22, sc.YMax, 1e-9)
	assert.Equal(t, []string{"$10.00", "$20.00"}, sc.DataLabels)
	assert.Equal(t, []string{"rgba(1, 2, 3, 0.75)", "blue"}, sc.Colors)

	empty := NewSummaryChart("none", nil)
	assert.Empty(t, empty.Values)

	s := &model.Stock{DayOpen: 1, DayHigh: 2, DayLow: 0.5, DayClose: 1.5, DMA30: 1, DMA50: 1, DMA200: 1, High52w: 3, Low52w: 0.1}
	assert.Len(t, OHLCSummary(s).Values, 4)
	assert.Len(t, DMASummary(s).Values, 4)
	assert.Equal(t, []string{"52w Low", "Day Close", "52w High"}, RangeSummary(s).Labels)
}

func TestDMABand(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{15, "#66ff66"},
		{10, "#66ff66"},
		{5, "#99ff99"},
		{0, "#ffff66"},
		{-1.9, "#ffff66"},
		{-2, "#FF9999"},
		{-10, "#FF6666"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DMABand(tt.in), tt.in)
	}
}

func TestParseRGBA(t *testing.T) {
	r, g, b, a, ok := ParseRGBA(VolumeColor)
	require.True(t, ok)
	assert.Equal(t, []uint8{78, 140, 255}, []uint8{r, g, b})
	assert.Equal(t, 0.75, a)

	_, _, _, _, ok = ParseRGBA("#66ff66")
	assert.False(t, ok)
	_, _, _, _, ok = ParseRGBA("rgba(300, 0, 0, 1)")
	assert.False(t, ok)
}
