package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockTracker/internal/calculator"
	"StockTracker/internal/chart"
	"StockTracker/internal/model"
)

// PriceChart builds the interactive price chart: one line per visible price
// series on the right axis and volume bars on a hidden second axis.
func PriceChart(title string, c *chart.Chart, visible chart.Visibility) *charts.Line {
	if visible == nil {
		visible = chart.NewVisibility()
	}
	selected := map[string]bool{}
	for _, item := range chart.Legend(c, visible) {
		selected[item.Label] = !item.Hidden
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(c.TooltipEnabled), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(selected) > 0), Selected: selected}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Position: c.PriceAxis.Position, Scale: opts.Bool(true)}),
	)
	line.ExtendYAxis(opts.YAxis{Show: opts.Bool(false), Min: c.VolumeAxis.Min, Max: c.VolumeAxis.Max})
	line.SetXAxis(c.Labels)

	for _, ds := range c.Datasets {
		if ds.Kind != chart.KindLine {
			continue
		}
		data := make([]opts.LineData, len(ds.Data))
		for i, v := range ds.Data {
			data[i] = opts.LineData{Value: calculator.Round2(v)}
		}
		line.AddSeries(ds.Label, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(ds.Tension > 0), ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: ds.Color, Width: float32(ds.BorderWidth)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
		)
	}

	if vol, ok := c.Dataset(chart.SeriesVolume); ok {
		bar := charts.NewBar()
		bar.SetXAxis(c.Labels)
		data := make([]opts.BarData, len(vol.Data))
		for i, v := range vol.Data {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(vol.Label, data,
			charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: vol.Color}),
		)
		line.Overlap(bar)
	}
	return line
}

// SummaryBars builds one summary bar chart.
func SummaryBars(sc *chart.SummaryChart) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: sc.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: chart.SummaryYAxisTitle, Min: calculator.Round2(sc.YMin), Max: calculator.Round2(sc.YMax)}),
	)
	bar.SetXAxis(sc.Labels)
	data := make([]opts.BarData, len(sc.Values))
	for i, v := range sc.Values {
		data[i] = opts.BarData{
			Name:      sc.DataLabels[i],
			Value:     calculator.Round2(v),
			ItemStyle: &opts.ItemStyle{Color: sc.Colors[i]},
		}
	}
	bar.AddSeries(sc.Title, data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// Page writes the stock page: the price chart for the current timeframe followed
// by the summary charts of the snapshot. Either part may be missing.
func Page(w io.Writer, stock *model.Stock, timeframe string, c *chart.Chart) error {
	page := components.NewPage()
	page.PageTitle = stock.Ticker
	if stock.Name != "" {
		page.PageTitle = fmt.Sprintf("%s (%s)", stock.Name, stock.Ticker)
	}

	if c != nil {
		page.AddCharts(PriceChart(fmt.Sprintf("%s %s", stock.Ticker, timeframe), c, nil))
	}
	if stock.DayClose != 0 {
		page.AddCharts(
			SummaryBars(chart.OHLCSummary(stock)),
			SummaryBars(chart.DMASummary(stock)),
			SummaryBars(chart.RangeSummary(stock)),
		)
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
