package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockTracker/internal/chart"
	"StockTracker/internal/model"
)

func payload(n int, ema bool) *model.ChartPayload {
	p := &model.ChartPayload{EMAData: ema, ChangePerc: 1.5}
	for i := 0; i < n; i++ {
		c := 100 + float64(i%7)
		p.DateData = append(p.DateData, "2024-01-01")
		p.ClosePriceData = append(p.ClosePriceData, c)
		p.VolumeData = append(p.VolumeData, float64(1000+i))
		if ema {
			p.EMA30Data = append(p.EMA30Data, c-1)
			p.EMA50Data = append(p.EMA50Data, c-2)
			p.EMA200Data = append(p.EMA200Data, c-3)
		}
	}
	return p
}

func newChart(p *model.ChartPayload) *chart.Chart {
	s := chart.NewSeriesStore()
	s.Replace(p)
	return chart.NewChart(s, false)
}

func TestSnapshot(t *testing.T) {
	for _, tt := range []struct {
		name  string
		p     *model.ChartPayload
		hover int
	}{
		{"ema with hover", payload(60, true), 30},
		{"no hover", payload(60, true), -1},
		{"single point", payload(1, false), 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Snapshot(&buf, newChart(tt.p), SnapshotOptions{Width: 640, Height: 320, Hover: tt.hover})
			require.NoError(t, err)
			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 640, img.Bounds().Dx())
			assert.Equal(t, 320, img.Bounds().Dy())
		})
	}
}

func TestSnapshotNoData(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, SnapshotPayload(&buf, &model.ChartPayload{}, SnapshotOptions{}))
	assert.Error(t, Snapshot(&buf, nil, SnapshotOptions{}))
}

func TestToColor(t *testing.T) {
	assert.Equal(t, drawing.Color{R: 78, G: 140, B: 255, A: 191}, toColor(chart.VolumeColor))
	assert.Equal(t, drawing.Color{R: 0x66, G: 0xff, B: 0x66, A: 255}, toColor("#66ff66"))
}

func TestPage(t *testing.T) {
	stock := &model.Stock{Ticker: "AAPL", Name: "Apple Inc.", DayOpen: 1, DayHigh: 2, DayLow: 0.5, DayClose: 1.5,
		DMA30: 1, DMA50: 1.1, DMA200: 1.2, High52w: 3, Low52w: 0.2}

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, stock, "1Y", newChart(payload(20, true))))
	html := buf.String()
	assert.True(t, strings.Contains(html, "Apple Inc. (AAPL)"))
	for _, want := range []string{chart.ClosePriceLabel, chart.EMA200Label, chart.VolumeLabel, "Daily Moving Averages", "52w High"} {
		assert.Contains(t, html, want)
	}

	buf.Reset()
	require.NoError(t, Page(&buf, &model.Stock{Ticker: "NEW"}, "1Y", nil))
	assert.NotContains(t, buf.String(), "Daily Moving Averages")
}

func TestXAxisSinglePeriod(t *testing.T) {
	c := newChart(payload(1, false))
	lo, hi, ticks := xAxis(c, c.Window())
	assert.Equal(t, -0.5, lo)
	assert.Equal(t, 0.5, hi)
	require.Len(t, ticks, 3)
	assert.Equal(t, lo, ticks[0].Value)
	assert.Equal(t, "2024-01-01", ticks[1].Label)
	assert.Equal(t, hi, ticks[2].Value)

	c = newChart(payload(30, false))
	lo, hi, ticks = xAxis(c, c.Window())
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 29.0, hi)
	assert.Equal(t, lo, ticks[0].Value)
	assert.Equal(t, "2024-01-01", ticks[0].Label)
	// labelled ticks stop at 27, a blank one pins the last period
	assert.Equal(t, gochart.Tick{Value: hi}, ticks[len(ticks)-1])
}

func TestBoxStyle(t *testing.T) {
	fill, text := boxStyle(chart.LabelBox{Color: "#66ff66"})
	assert.Equal(t, toColor("#66ff66"), fill)
	assert.Equal(t, toColor(chart.FillColor), text)
}
