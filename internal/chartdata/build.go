package chartdata

import (
	"fmt"
	"sort"

	"StockTracker/internal/calculator"
	"StockTracker/internal/model"
)

// EMAPeriods are the moving averages plotted on the chart, slowest last.
var EMAPeriods = [3]int{30, 50, 200}

// Build cuts the timeframe window out of bars (oldest first) and computes its
// payload. Moving averages are computed over the whole history and included only
// when every point of the window has all of them defined.
func Build(tf Timeframe, bars []model.OHLCV) (*model.ChartPayload, error) {
	p := &model.ChartPayload{
		DateData:       []string{},
		ClosePriceData: []float64{},
		VolumeData:     []float64{},
	}
	if len(bars) == 0 {
		return p, nil
	}

	start := 0
	if tf.Start != nil {
		from := tf.Start(bars[len(bars)-1].Time)
		start = sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(from) })
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	for _, b := range bars[start:] {
		p.DateData = append(p.DateData, b.Time.Format(DateFormat))
		p.ClosePriceData = append(p.ClosePriceData, b.Close)
		p.VolumeData = append(p.VolumeData, b.Volume)
	}
	p.ChangePerc = calculator.ChangePercent(p.ClosePriceData)

	if start < EMAPeriods[2]-1 {
		return p, nil
	}
	dst := []*[]float64{&p.EMA30Data, &p.EMA50Data, &p.EMA200Data}
	for i, period := range EMAPeriods {
		ema, err := calculator.EMASeries(closes, period)
		if err != nil {
			return nil, fmt.Errorf("ema %d: %w", period, err)
		}
		window := make([]float64, 0, len(bars)-start)
		for _, v := range ema[start:] {
			window = append(window, calculator.Round2(v))
		}
		*dst[i] = window
	}
	p.EMAData = true
	return p, nil
}
