package chartdata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"StockTracker/internal/cache"
	"StockTracker/internal/collector"
	"StockTracker/internal/model"
	"StockTracker/internal/store"
)

// SearchLimit is the number of suggestions returned for a query.
const SearchLimit = 10

// BuildTimeout bounds a shared payload build, including an on-demand fetch.
const BuildTimeout = 2 * time.Minute

// Service answers chart, search and snapshot queries from the store, fetching
// from the market data source when a known ticker has not been collected yet.
type Service struct {
	store     store.Store
	cache     cache.Cache
	collector *collector.Collector
	ttl       time.Duration
	group     singleflight.Group
}

// NewService wires the service. col may be nil to disable on-demand fetching.
func NewService(st store.Store, c cache.Cache, col *collector.Collector, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{store: st, cache: c, collector: col, ttl: ttl}
}

// ChartData returns the payload of one timeframe. Unknown tickers yield
// store.ErrNotFound and unknown timeframes ErrUnknownTimeframe.
func (s *Service) ChartData(ctx context.Context, ticker, timeframe string) (*model.ChartPayload, error) {
	tf, err := Lookup(timeframe)
	if err != nil {
		return nil, err
	}
	ticker = store.NormalizeTicker(ticker)
	if _, err := s.store.GetStock(ctx, ticker); err != nil {
		return nil, fmt.Errorf("chart data %s: %w", ticker, err)
	}

	key := cache.Key(ticker, tf.Name)
	if p, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("[WARN] Cache read %s failed: %v", key, err)
	} else if ok {
		return p, nil
	}

	// The build is shared by every caller of key, so it must not die with the
	// first caller's request.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), BuildTimeout)
		defer cancel()
		return s.build(ctx, ticker, tf, key)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("chart data %s/%s: %w", ticker, tf.Name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("chart data %s/%s: %w", ticker, tf.Name, res.Err)
		}
		return res.Val.(*model.ChartPayload), nil
	}
}

func (s *Service) build(ctx context.Context, ticker string, tf Timeframe, key string) (*model.ChartPayload, error) {
	bars, err := s.store.Bars(ctx, ticker, tf.Span)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 && s.collector != nil {
		log.Printf("[INFO] No stored bars for %s, fetching", ticker)
		if _, err := s.Refresh(ctx, ticker); err != nil {
			return nil, err
		}
		if bars, err = s.store.Bars(ctx, ticker, tf.Span); err != nil {
			return nil, err
		}
	}
	p, err := Build(tf, bars)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, p, s.ttl); err != nil {
		log.Printf("[WARN] Cache write %s failed: %v", key, err)
	}
	return p, nil
}

// Refresh collects fresh bars and the snapshot of a ticker, stores them and drops
// its cached payloads.
func (s *Service) Refresh(ctx context.Context, ticker string) (*model.Stock, error) {
	if s.collector == nil {
		return nil, errors.New("refresh: no data source configured")
	}
	ticker = store.NormalizeTicker(ticker)
	name := ""
	if st, err := s.store.GetStock(ctx, ticker); err == nil {
		name = st.Name
	}
	res, err := s.collector.Collect(ctx, ticker, name)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", ticker, err)
	}
	if err := s.store.RegisterTicker(ctx, ticker, res.Stock.Name); err != nil {
		return nil, fmt.Errorf("register %s: %w", ticker, err)
	}
	if err := s.store.SaveBars(ctx, ticker, model.TimespanDay, res.Daily); err != nil {
		return nil, fmt.Errorf("save daily bars %s: %w", ticker, err)
	}
	if err := s.store.SaveBars(ctx, ticker, model.TimespanWeek, res.Weekly); err != nil {
		return nil, fmt.Errorf("save weekly bars %s: %w", ticker, err)
	}
	if err := s.store.UpsertStock(ctx, &res.Stock); err != nil {
		return nil, fmt.Errorf("save stock %s: %w", ticker, err)
	}

	keys := make([]string, 0, len(Timeframes))
	for _, name := range Names() {
		keys = append(keys, cache.Key(ticker, name))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[WARN] Cache invalidation for %s failed: %v", ticker, err)
	}
	return &res.Stock, nil
}

// RefreshAll refreshes every known ticker and returns how many succeeded. A
// failing ticker is logged and skipped.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	tickers, err := s.store.ListTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tickers: %w", err)
	}
	ok := 0
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		if _, err := s.Refresh(ctx, t); err != nil {
			log.Printf("[ERROR] %v", err)
			continue
		}
		ok++
	}
	log.Printf("[INFO] Refreshed %d/%d tickers", ok, len(tickers))
	return ok, nil
}

// Track adds a ticker to the universe.
func (s *Service) Track(ctx context.Context, ticker, name string) error {
	return s.store.RegisterTicker(ctx, ticker, name)
}

// Stock returns the snapshot of a known ticker, collecting it first when it has
// never been refreshed.
func (s *Service) Stock(ctx context.Context, ticker string) (*model.Stock, error) {
	st, err := s.store.GetStock(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", ticker, err)
	}
	if st.UpdatedAt.IsZero() && st.DayClose == 0 && s.collector != nil {
		if fresh, err := s.Refresh(ctx, ticker); err != nil {
			log.Printf("[WARN] On-demand refresh of %s failed: %v", ticker, err)
		} else {
			return fresh, nil
		}
	}
	return st, nil
}

// QueryStocks returns autocomplete suggestions for q; an empty q yields none.
func (s *Service) QueryStocks(ctx context.Context, q string) ([]model.Suggestion, error) {
	if q == "" {
		return []model.Suggestion{}, nil
	}
	return s.store.SearchStocks(ctx, q, SearchLimit)
}

// Top returns the day's gainers, losers and most traded stocks.
func (s *Service) Top(ctx context.Context, limit int) (*model.TopStocks, error) {
	return s.store.TopStocks(ctx, limit)
}
