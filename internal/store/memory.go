package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"StockTracker/internal/model"
)

type barKey struct {
	ticker string
	span   model.Timespan
}

// MemoryStore keeps everything in process memory. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	stocks map[string]*stockEntry
	bars   map[barKey][]model.OHLCV
}

type stockEntry struct {
	stock     model.Stock
	refreshed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stocks: make(map[string]*stockEntry),
		bars:   make(map[barKey][]model.OHLCV),
	}
}

func (m *MemoryStore) RegisterTicker(_ context.Context, ticker, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticker = NormalizeTicker(ticker)
	if _, ok := m.stocks[ticker]; !ok {
		m.stocks[ticker] = &stockEntry{stock: model.Stock{Ticker: ticker, Name: name}}
	}
	return nil
}

func (m *MemoryStore) UpsertStock(_ context.Context, s *model.Stock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := *s
	st.Ticker = NormalizeTicker(st.Ticker)
	m.stocks[st.Ticker] = &stockEntry{stock: st, refreshed: true}
	return nil
}

func (m *MemoryStore) GetStock(_ context.Context, ticker string) (*model.Stock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.stocks[NormalizeTicker(ticker)]
	if !ok {
		return nil, ErrNotFound
	}
	st := e.stock
	return &st, nil
}

func (m *MemoryStore) ListTickers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.stocks))
	for t := range m.stocks {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// SaveBars merges bars into the stored series, replacing bars of the same date.
func (m *MemoryStore) SaveBars(_ context.Context, ticker string, span model.Timespan, bars []model.OHLCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := barKey{NormalizeTicker(ticker), span}
	byDate := make(map[int64]model.OHLCV, len(m.bars[key])+len(bars))
	for _, b := range m.bars[key] {
		byDate[b.Time.Unix()] = b
	}
	for _, b := range bars {
		byDate[b.Time.Unix()] = b
	}
	merged := make([]model.OHLCV, 0, len(byDate))
	for _, b := range byDate {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	m.bars[key] = merged
	return nil
}

func (m *MemoryStore) Bars(_ context.Context, ticker string, span model.Timespan) ([]model.OHLCV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.bars[barKey{NormalizeTicker(ticker), span}]
	return append([]model.OHLCV(nil), src...), nil
}

func (m *MemoryStore) SearchStocks(_ context.Context, query string, limit int) ([]model.Suggestion, error) {
	out := []model.Suggestion{}
	if query == "" {
		return out, nil
	}
	q := strings.ToUpper(query)
	m.mu.RLock()
	var matches []model.Stock
	for _, e := range m.stocks {
		if strings.HasPrefix(e.stock.Ticker, q) || strings.HasPrefix(strings.ToUpper(e.stock.Name), q) {
			matches = append(matches, e.stock)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		pi, pj := matches[i].Popularity(), matches[j].Popularity()
		if pi != pj {
			return pi > pj
		}
		return matches[i].Ticker < matches[j].Ticker
	})
	for i, s := range matches {
		if i == limit {
			break
		}
		out = append(out, model.Suggestion{Ticker: s.Ticker, Name: s.Name})
	}
	return out, nil
}

func (m *MemoryStore) TopStocks(_ context.Context, limit int) (*model.TopStocks, error) {
	m.mu.RLock()
	var all []model.Stock
	for _, e := range m.stocks {
		if e.refreshed {
			all = append(all, e.stock)
		}
	}
	m.mu.RUnlock()

	top := func(less func(a, b model.Stock) bool) []model.Stock {
		list := append([]model.Stock(nil), all...)
		sort.Slice(list, func(i, j int) bool {
			if less(list[i], list[j]) {
				return true
			}
			if less(list[j], list[i]) {
				return false
			}
			return list[i].Ticker < list[j].Ticker
		})
		if len(list) > limit {
			list = list[:limit]
		}
		return append([]model.Stock{}, list...)
	}
	return &model.TopStocks{
		Gainers:   top(func(a, b model.Stock) bool { return a.TodaysChangePerc > b.TodaysChangePerc }),
		Losers:    top(func(a, b model.Stock) bool { return a.TodaysChangePerc < b.TodaysChangePerc }),
		TopTraded: top(func(a, b model.Stock) bool { return a.Volume > b.Volume }),
	}, nil
}

func (m *MemoryStore) Close() error { return nil }
