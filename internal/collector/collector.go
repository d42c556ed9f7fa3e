package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"StockTracker/internal/calculator"
	"StockTracker/internal/model"
)

// History fetched per refresh. Daily bars cover the 1Y window plus the 200 periods
// the slowest EMA needs; weekly bars do the same for 5Y and reach back for MAX.
const (
	DefaultDailyBars  = 504
	DefaultWeeklyBars = 1040
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	StockName  string
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV
	Err        error
	Now        time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days, m.now()), nil
}

func (m *MockFetcher) FetchWeeklyBars(_ context.Context, _ string, weeks int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.WeeklyData != nil {
		return m.WeeklyData, nil
	}
	weekly := aggregateDailyToWeekly(generateMockBars(m.Price, weeks*5, m.now()))
	if len(weekly) > weeks {
		weekly = weekly[len(weekly)-weeks:]
	}
	return weekly, nil
}

func (m *MockFetcher) FetchName(_ context.Context, symbol string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.StockName != "" {
		return m.StockName, nil
	}
	return strings.ToUpper(symbol) + " Inc.", nil
}

func (m *MockFetcher) now() time.Time {
	if m.Now.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return m.Now
}

// generateMockBars produces count weekday bars ending at end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	day := end
	for i := count - 1; i >= 0; i-- {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   day,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		day = day.AddDate(0, 0, -1)
	}
	return bars
}

// Result is everything collected for one ticker in one refresh.
type Result struct {
	Stock  model.Stock
	Daily  []model.OHLCV
	Weekly []model.OHLCV
}

// Collector orchestrates data fetching and snapshot computation.
type Collector struct {
	Fetcher    Fetcher
	DailyBars  int
	WeeklyBars int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, DailyBars: DefaultDailyBars, WeeklyBars: DefaultWeeklyBars}
}

// Collect fetches bar history for ticker and builds its snapshot. name is looked
// up from the data source when empty.
func (c *Collector) Collect(ctx context.Context, ticker, name string) (*Result, error) {
	dailyBars, err := c.Fetcher.FetchDailyBars(ctx, ticker, c.DailyBars)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	weeklyBars, err := c.Fetcher.FetchWeeklyBars(ctx, ticker, c.WeeklyBars)
	if err != nil {
		return nil, fmt.Errorf("fetch weekly bars: %w", err)
	}
	if name == "" {
		if n, err := c.Fetcher.FetchName(ctx, ticker); err != nil {
			log.Printf("[WARN] Name lookup for %s failed: %v", ticker, err)
			name = ticker
		} else {
			name = n
		}
	}
	stock, err := Snapshot(ticker, name, dailyBars)
	if err != nil {
		return nil, err
	}
	return &Result{Stock: *stock, Daily: dailyBars, Weekly: weeklyBars}, nil
}

// Snapshot derives the stock page figures from daily bars, oldest first.
func Snapshot(ticker, name string, dailyBars []model.OHLCV) (*model.Stock, error) {
	if len(dailyBars) == 0 {
		return nil, fmt.Errorf("snapshot %s: no daily bars", ticker)
	}
	last := dailyBars[len(dailyBars)-1]
	s := &model.Stock{
		Ticker:    ticker,
		Name:      name,
		DayOpen:   last.Open,
		DayHigh:   last.High,
		DayLow:    last.Low,
		DayClose:  last.Close,
		Volume:    last.Volume,
		UpdatedAt: last.Time,
	}

	if len(dailyBars) > 1 {
		prev := dailyBars[len(dailyBars)-2].Close
		s.TodaysChange = calculator.Round2(last.Close - prev)
		if pct, err := calculator.PercentDiff(last.Close, prev); err != nil {
			log.Printf("[WARN] %s daily change calculation failed: %v", ticker, err)
		} else {
			s.TodaysChangePerc = pct
		}
	}

	for _, p := range []struct {
		period int
		dst    *float64
	}{{30, &s.DMA30}, {50, &s.DMA50}, {200, &s.DMA200}} {
		if dma, err := calculator.CalculateDMA(dailyBars, p.period); err != nil {
			log.Printf("[WARN] %s %d-DMA calculation failed: %v", ticker, p.period, err)
		} else {
			*p.dst = dma
		}
	}

	if pct, err := calculator.PercentDiff(s.DayClose, s.DMA200); err != nil {
		log.Printf("[WARN] %s 200-DMA diff calculation failed: %v", ticker, err)
	} else {
		s.DMA200PercDiff = pct
	}

	// 52-week range
	if h, l, err := calculator.Calculate52WeekRange(dailyBars); err != nil {
		log.Printf("[WARN] %s 52-week range calculation failed: %v", ticker, err)
		s.High52w = last.Close
		s.Low52w = last.Close
	} else {
		s.High52w = h
		s.Low52w = l
	}
	return s, nil
}
