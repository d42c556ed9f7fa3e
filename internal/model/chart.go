package model

import "fmt"

// ChartPayload is the data for one timeframe of the price chart. Index i across
// all arrays describes one trading period.
type ChartPayload struct {
	DateData       []string  `json:"date_data"`
	ClosePriceData []float64 `json:"close_price_data"`
	VolumeData     []float64 `json:"volume_data"`
	EMAData        bool      `json:"ema_data"`
	EMA30Data      []float64 `json:"ema_30_data,omitempty"`
	EMA50Data      []float64 `json:"ema_50_data,omitempty"`
	EMA200Data     []float64 `json:"ema_200_data,omitempty"`
	ChangePerc     float64   `json:"change_perc"`
}

// Len returns the number of periods in the payload.
func (p ChartPayload) Len() int {
	return len(p.DateData)
}

// Validate checks that every present array has the same length.
func (p *ChartPayload) Validate() error {
	n := len(p.DateData)
	if len(p.ClosePriceData) != n {
		return fmt.Errorf("close_price_data has %d values, want %d", len(p.ClosePriceData), n)
	}
	if len(p.VolumeData) != n {
		return fmt.Errorf("volume_data has %d values, want %d", len(p.VolumeData), n)
	}
	if !p.EMAData {
		return nil
	}
	for name, s := range map[string][]float64{
		"ema_30_data":  p.EMA30Data,
		"ema_50_data":  p.EMA50Data,
		"ema_200_data": p.EMA200Data,
	} {
		if len(s) != n {
			return fmt.Errorf("%s has %d values, want %d", name, len(s), n)
		}
	}
	return nil
}
