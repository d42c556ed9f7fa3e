package collector

import (
	"context"
	"fmt"

	"StockTracker/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchWeeklyBars(ctx context.Context, symbol string, weeks int) ([]model.OHLCV, error)
	FetchName(ctx context.Context, symbol string) (string, error)
	Name() string
}

// New returns the fetcher registered under name.
func New(name, apiKey, proxyURL string) (Fetcher, error) {
	switch name {
	case "yahoo":
		return NewYahooFetcher(proxyURL), nil
	case "polygon":
		return NewPolygonFetcher(DefaultPolygonURL, apiKey, proxyURL), nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", name)
}
