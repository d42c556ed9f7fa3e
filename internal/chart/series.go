package chart

import "StockTracker/internal/model"

// SeriesID identifies one of the plotted value streams.
type SeriesID int

const (
	SeriesClose SeriesID = iota
	SeriesEMA30
	SeriesEMA50
	SeriesEMA200
	SeriesVolume
)

// MovingAverages lists the series that can be toggled from the legend.
var MovingAverages = []SeriesID{SeriesEMA30, SeriesEMA50, SeriesEMA200}

var seriesLabels = map[SeriesID]string{
	SeriesClose:  ClosePriceLabel,
	SeriesEMA30:  EMA30Label,
	SeriesEMA50:  EMA50Label,
	SeriesEMA200: EMA200Label,
	SeriesVolume: VolumeLabel,
}

var seriesColors = map[SeriesID]string{
	SeriesClose:  ClosePriceColor,
	SeriesEMA30:  EMA30Color,
	SeriesEMA50:  EMA50Color,
	SeriesEMA200: EMA200Color,
	SeriesVolume: VolumeColor,
}

func (id SeriesID) Label() string { return seriesLabels[id] }
func (id SeriesID) Color() string { return seriesColors[id] }

// IsMovingAverage reports whether the series is one of the EMA lines.
func (id SeriesID) IsMovingAverage() bool {
	return id == SeriesEMA30 || id == SeriesEMA50 || id == SeriesEMA200
}

// SeriesByLabel resolves a dataset label such as "50-EMA".
func SeriesByLabel(label string) (SeriesID, bool) {
	for id, l := range seriesLabels {
		if l == label {
			return id, true
		}
	}
	return 0, false
}

// SeriesStore holds the arrays plotted for the current timeframe. The slices are
// cleared and refilled in place on every Replace so anything holding the store
// sees the new data.
type SeriesStore struct {
	Dates  []string
	Close  []float64
	EMA30  []float64
	EMA50  []float64
	EMA200 []float64
	Volume []float64
	HasEMA bool
}

func NewSeriesStore() *SeriesStore {
	return &SeriesStore{}
}

// Replace swaps the store contents for the payload. EMA arrays are left empty when
// the payload carries no moving averages.
func (s *SeriesStore) Replace(p *model.ChartPayload) {
	s.Dates = append(s.Dates[:0], p.DateData...)
	s.Close = append(s.Close[:0], p.ClosePriceData...)
	s.Volume = append(s.Volume[:0], p.VolumeData...)
	s.EMA30 = s.EMA30[:0]
	s.EMA50 = s.EMA50[:0]
	s.EMA200 = s.EMA200[:0]
	s.HasEMA = p.EMAData
	if s.HasEMA {
		s.EMA30 = append(s.EMA30, p.EMA30Data...)
		s.EMA50 = append(s.EMA50, p.EMA50Data...)
		s.EMA200 = append(s.EMA200, p.EMA200Data...)
	}
}

// Len is the number of periods held.
func (s *SeriesStore) Len() int { return len(s.Dates) }

// HasData reports whether there is anything to chart.
func (s *SeriesStore) HasData() bool {
	return len(s.Dates) != 0 && len(s.Close) != 0
}

// Values returns the backing slice for a series; EMA series are nil without EMA data.
func (s *SeriesStore) Values(id SeriesID) []float64 {
	switch id {
	case SeriesClose:
		return s.Close
	case SeriesVolume:
		return s.Volume
	}
	if !s.HasEMA {
		return nil
	}
	switch id {
	case SeriesEMA30:
		return s.EMA30
	case SeriesEMA50:
		return s.EMA50
	case SeriesEMA200:
		return s.EMA200
	}
	return nil
}

// ValueAt returns the value of a series at index i.
func (s *SeriesStore) ValueAt(id SeriesID, i int) (float64, bool) {
	vals := s.Values(id)
	if i < 0 || i >= len(vals) {
		return 0, false
	}
	return vals[i], true
}

// MaxVolume returns the largest volume held, or 0 when empty.
func (s *SeriesStore) MaxVolume() float64 {
	max := 0.0
	for _, v := range s.Volume {
		if v > max {
			max = v
		}
	}
	return max
}

// Payload copies the store back into a payload; change_perc is not tracked here.
func (s *SeriesStore) Payload() model.ChartPayload {
	p := model.ChartPayload{
		DateData:       append([]string(nil), s.Dates...),
		ClosePriceData: append([]float64(nil), s.Close...),
		VolumeData:     append([]float64(nil), s.Volume...),
		EMAData:        s.HasEMA,
	}
	if s.HasEMA {
		p.EMA30Data = append([]float64(nil), s.EMA30...)
		p.EMA50Data = append([]float64(nil), s.EMA50...)
		p.EMA200Data = append([]float64(nil), s.EMA200...)
	}
	return p
}

// Last is the index of the most recent period, or -1 when empty.
func (s *SeriesStore) Last() int { return s.Len() - 1 }
