package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timespan is the granularity a bar series is stored at.
type Timespan string

const (
	TimespanDay  Timespan = "day"
	TimespanWeek Timespan = "week"
)

// PriceSeries holds raw bars for one ticker at one timespan, oldest first.
type PriceSeries struct {
	Ticker    string
	Timespan  Timespan
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices of the series in order.
func (p *PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Close
	}
	return out
}
