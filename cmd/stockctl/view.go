package main

import (
	"sync"

	"StockTracker/internal/chart"
)

var _ chart.View = (*textView)(nil)

// textView records what the chart widget shows so the CLI can print it.
type textView struct {
	mu        sync.Mutex
	visible   bool
	readout   chart.Readout
	timeframe string
	badge     chart.Badge
	legend    []chart.LegendItem
	frame     chart.Frame
}

// SetSpinner is a no-op: the CLI prints once the chart has loaded.
func (v *textView) SetSpinner(bool) {}

func (v *textView) SetChartVisible(visible bool) {
	v.mu.Lock()
	v.visible = visible
	v.mu.Unlock()
}

func (v *textView) SetReadout(r chart.Readout) {
	v.mu.Lock()
	v.readout = r
	v.mu.Unlock()
}

func (v *textView) SetActiveTimeframe(timeframe string) {
	v.mu.Lock()
	v.timeframe = timeframe
	v.mu.Unlock()
}

func (v *textView) SetChangeBadge(b chart.Badge) {
	v.mu.Lock()
	v.badge = b
	v.mu.Unlock()
}

func (v *textView) SetLegend(items []chart.LegendItem) {
	v.mu.Lock()
	v.legend = items
	v.mu.Unlock()
}

func (v *textView) Draw(f chart.Frame) {
	v.mu.Lock()
	v.frame = f
	v.mu.Unlock()
}
