package model

import "time"

// Stock is the per-ticker snapshot shown on the stock page and used for search ranking.
type Stock struct {
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name"`
	DayOpen          float64   `json:"day_open"`
	DayHigh          float64   `json:"day_high"`
	DayLow           float64   `json:"day_low"`
	DayClose         float64   `json:"day_close"`
	Volume           float64   `json:"volume"`
	TodaysChange     float64   `json:"todays_change"`
	TodaysChangePerc float64   `json:"todays_change_perc"`
	DMA30            float64   `json:"dma_30"`
	DMA50            float64   `json:"dma_50"`
	DMA200           float64   `json:"dma_200"`
	DMA200PercDiff   float64   `json:"dma_200_perc_diff"`
	High52w          float64   `json:"high_52w"`
	Low52w           float64   `json:"low_52w"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Popularity estimates how widely traded a stock is (day close × volume).
func (s *Stock) Popularity() float64 {
	return s.DayClose * s.Volume
}

// Suggestion is one autocomplete entry returned by /query_stocks.
type Suggestion struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// TopStocks groups the day's movers.
type TopStocks struct {
	Gainers   []Stock `json:"gainers"`
	Losers    []Stock `json:"losers"`
	TopTraded []Stock `json:"top_traded"`
}
