package store

import (
	"context"
	"errors"
	"strings"

	"StockTracker/internal/model"
)

// ErrNotFound is returned when a ticker is not known to the store.
var ErrNotFound = errors.New("not found")

// Store persists the ticker universe, per-ticker snapshots and bar history.
type Store interface {
	// RegisterTicker adds a ticker to the universe; existing entries are kept.
	RegisterTicker(ctx context.Context, ticker, name string) error
	UpsertStock(ctx context.Context, s *model.Stock) error
	// GetStock returns the snapshot of a known ticker, or ErrNotFound.
	GetStock(ctx context.Context, ticker string) (*model.Stock, error)
	ListTickers(ctx context.Context) ([]string, error)
	SaveBars(ctx context.Context, ticker string, span model.Timespan, bars []model.OHLCV) error
	// Bars returns the stored bars of a ticker, oldest first.
	Bars(ctx context.Context, ticker string, span model.Timespan) ([]model.OHLCV, error)
	// SearchStocks matches query as a prefix of the ticker or of the name, most
	// popular (day close × volume) first.
	SearchStocks(ctx context.Context, query string, limit int) ([]model.Suggestion, error)
	TopStocks(ctx context.Context, limit int) (*model.TopStocks, error)
	Close() error
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
