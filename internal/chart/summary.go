package chart

import (
	"math"
	"regexp"
	"strconv"

	"StockTracker/internal/model"
)

const (
	SummaryBufferPerc      = 0.2
	SummaryBarTransparency = 0.75
	SummaryYAxisTitle      = "Price ($)"
)

// SummaryBar is one bar of a summary chart.
type SummaryBar struct {
	Label string
	Value float64
	Color string
}

// SummaryChart is a small bar chart comparing a handful of prices.
type SummaryChart struct {
	Title      string
	Labels     []string
	Values     []float64
	Colors     []string
	DataLabels []string
	YMin       float64
	YMax       float64
}

// NewSummaryChart lays out bars with the y range widened by 20% of the value
// spread on both sides, and bar colours made 75% opaque.
func NewSummaryChart(title string, bars []SummaryBar) *SummaryChart {
	sc := &SummaryChart{Title: title}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		sc.Labels = append(sc.Labels, b.Label)
		sc.Values = append(sc.Values, b.Value)
		sc.Colors = append(sc.Colors, ChangeTransparency(b.Color, SummaryBarTransparency))
		sc.DataLabels = append(sc.DataLabels, "$"+FormatFixed(b.Value))
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if len(bars) == 0 {
		return sc
	}
	buf := (hi - lo) * SummaryBufferPerc
	sc.YMin = lo - buf
	sc.YMax = hi + buf
	return sc
}

var rgbaPattern = regexp.MustCompile(`rgba\((\d+),\s*(\d+),\s*(\d+),\s*([\d.]+)\)`)

// ChangeTransparency replaces the alpha of an rgba() colour. Strings that are not
// rgba() colours are returned unchanged. alpha is clamped to [0, 1].
func ChangeTransparency(color string, alpha float64) string {
	m := rgbaPattern.FindStringSubmatch(color)
	if m == nil {
		return color
	}
	alpha = math.Max(0, math.Min(1, alpha))
	return "rgba(" + m[1] + ", " + m[2] + ", " + m[3] + ", " + strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
}

// ParseRGBA splits an rgba() colour into its channels.
func ParseRGBA(color string) (r, g, b uint8, alpha float64, ok bool) {
	m := rgbaPattern.FindStringSubmatch(color)
	if m == nil {
		return 0, 0, 0, 0, false
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return 0, 0, 0, 0, false
		}
		ch[i] = uint8(v)
	}
	alpha, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return ch[0], ch[1], ch[2], math.Max(0, math.Min(1, alpha)), true
}

// OHLCSummary compares the day's open, high, low and close.
func OHLCSummary(s *model.Stock) *SummaryChart {
	return NewSummaryChart("Daily Price Summary", []SummaryBar{
		{Label: "Open", Value: s.DayOpen, Color: "rgba(54, 162, 235, 1)"},
		{Label: "High", Value: s.DayHigh, Color: PositiveColor},
		{Label: "Low", Value: s.DayLow, Color: NegativeColor},
		{Label: "Close", Value: s.DayClose, Color: ClosePriceColor},
	})
}

// DMASummary compares the close with its daily moving averages.
func DMASummary(s *model.Stock) *SummaryChart {
	return NewSummaryChart("Daily Moving Averages", []SummaryBar{
		{Label: "Day Close", Value: s.DayClose, Color: ClosePriceColor},
		{Label: "30-DMA", Value: s.DMA30, Color: EMA30Color},
		{Label: "50-DMA", Value: s.DMA50, Color: EMA50Color},
		{Label: "200-DMA", Value: s.DMA200, Color: EMA200Color},
	})
}

// RangeSummary places the close within its 52 week range.
func RangeSummary(s *model.Stock) *SummaryChart {
	return NewSummaryChart("52 Week Range", []SummaryBar{
		{Label: "52w Low", Value: s.Low52w, Color: NegativeColor},
		{Label: "Day Close", Value: s.DayClose, Color: ClosePriceColor},
		{Label: "52w High", Value: s.High52w, Color: PositiveColor},
	})
}

// DMABand colours the distance of the close from its 200 day moving average.
func DMABand(percDiff float64) string {
	switch {
	case percDiff >= 10:
		return "#66ff66"
	case percDiff <= -10:
		return "#FF6666"
	case percDiff >= 2:
		return "#99ff99"
	case percDiff <= -2:
		return "#FF9999"
	default:
		return "#ffff66"
	}
}
