package chartdata

import (
	"errors"
	"fmt"
	"time"

	"StockTracker/internal/model"
)

// ErrUnknownTimeframe is returned for a timeframe name not in Timeframes.
var ErrUnknownTimeframe = errors.New("unknown timeframe")

// DateFormat is the label format of every chart date.
const DateFormat = "2006-01-02"

const DefaultTimeframe = "1Y"

// Timeframe selects which stored series a chart uses and how far back it reaches.
type Timeframe struct {
	Name string
	Span model.Timespan
	// Start returns the first date shown given the latest bar date; nil shows all.
	Start func(latest time.Time) time.Time
}

func monthsBack(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(0, -n, 0) }
}

func yearsBack(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(-n, 0, 0) }
}

func yearToDate(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// Timeframes lists the selectable timeframes in display order.
var Timeframes = []Timeframe{
	{Name: "1M", Span: model.TimespanDay, Start: monthsBack(1)},
	{Name: "3M", Span: model.TimespanDay, Start: monthsBack(3)},
	{Name: "6M", Span: model.TimespanDay, Start: monthsBack(6)},
	{Name: "YTD", Span: model.TimespanDay, Start: yearToDate},
	{Name: "1Y", Span: model.TimespanDay, Start: yearsBack(1)},
	{Name: "5Y", Span: model.TimespanWeek, Start: yearsBack(5)},
	{Name: "MAX", Span: model.TimespanWeek},
}

// Lookup finds a timeframe by name.
func Lookup(name string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if tf.Name == name {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("%w: %q", ErrUnknownTimeframe, name)
}

// Names returns the timeframe names in display order.
func Names() []string {
	out := make([]string, len(Timeframes))
	for i, tf := range Timeframes {
		out[i] = tf.Name
	}
	return out
}
