package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatFixed renders v with two decimals and no grouping, e.g. "1234.50".
func FormatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', DecimalPrecision, 64)
}

// FormatPrice renders v with two decimals and comma grouping, e.g. "1,234.50".
func FormatPrice(v float64) string {
	s := FormatFixed(v)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + s
	}
	return sign + humanize.Comma(n) + "." + frac
}

// FormatVolume renders a volume as a grouped integer, e.g. "1,200,000".
func FormatVolume(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// Readout is the always-visible text block mirroring the hovered values.
type Readout struct {
	Date       string
	ClosePrice string
	EMA30      string
	EMA50      string
	EMA200     string
	Volume     string
}

// EmptyReadout has every field set to the missing-data text.
func EmptyReadout() Readout {
	return Readout{
		Date:       DataMissingText,
		ClosePrice: DataMissingText,
		EMA30:      DataMissingText,
		EMA50:      DataMissingText,
		EMA200:     DataMissingText,
		Volume:     DataMissingText,
	}
}

// ReadoutAt formats the values at index. Negative indexes count from the end, so
// -1 is the most recent period. Out of range yields EmptyReadout.
func ReadoutAt(s *SeriesStore, index int) Readout {
	r := EmptyReadout()
	if index < 0 {
		index += s.Len()
	}
	if index < 0 || index >= s.Len() {
		return r
	}
	r.Date = s.Dates[index]
	if v, ok := s.ValueAt(SeriesClose, index); ok {
		r.ClosePrice = FormatPrice(v)
	}
	if v, ok := s.ValueAt(SeriesVolume, index); ok {
		r.Volume = FormatVolume(v)
	}
	if v, ok := s.ValueAt(SeriesEMA30, index); ok {
		r.EMA30 = FormatPrice(v)
	}
	if v, ok := s.ValueAt(SeriesEMA50, index); ok {
		r.EMA50 = FormatPrice(v)
	}
	if v, ok := s.ValueAt(SeriesEMA200, index); ok {
		r.EMA200 = FormatPrice(v)
	}
	return r
}

// Lines renders the readout as "Label: value" rows.
func (r Readout) Lines() []string {
	return []string{
		DateLabel + ": " + r.Date,
		ClosePriceLabel + ": " + r.ClosePrice,
		EMA30Label + ": " + r.EMA30,
		EMA50Label + ": " + r.EMA50,
		EMA200Label + ": " + r.EMA200,
		VolumeLabel + ": " + r.Volume,
	}
}

// Badge is the timeframe change-percentage indicator.
type Badge struct {
	Text  string
	Color string
}

// ChangeBadge formats a change percentage: sign-prefixed, two decimals, green for
// non-negative and red for negative values.
func ChangeBadge(changePerc float64) Badge {
	if changePerc >= 0 {
		return Badge{Text: "+" + FormatFixed(changePerc) + "%", Color: PositiveColor}
	}
	return Badge{Text: FormatFixed(changePerc) + "%", Color: NegativeColor}
}
