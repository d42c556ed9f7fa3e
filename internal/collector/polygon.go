package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockTracker/internal/model"
)

const DefaultPolygonURL = "https://api.polygon.io"

// PolygonFetcher implements Fetcher using the Polygon.io aggregates API.
type PolygonFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

// NewPolygonFetcher creates a new fetcher with optional proxy support.
func NewPolygonFetcher(baseURL, apiKey, proxyURL string) *PolygonFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &PolygonFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		now: time.Now,
	}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

// polygonAggs is the response shape of /v2/aggs.
type polygonAggs struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Error        string `json:"error"`
	Results      []struct {
		Timestamp int64   `json:"t"`
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
}

func (f *PolygonFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	// Calendar span is wider than the number of trading days wanted.
	from := f.now().AddDate(0, 0, -days*7/5-10)
	return f.fetchAggs(ctx, symbol, model.TimespanDay, from, days)
}

func (f *PolygonFetcher) FetchWeeklyBars(ctx context.Context, symbol string, weeks int) ([]model.OHLCV, error) {
	from := f.now().AddDate(0, 0, -weeks*7-7)
	return f.fetchAggs(ctx, symbol, model.TimespanWeek, from, weeks)
}

// FetchName looks the company name up in the ticker reference endpoint.
func (f *PolygonFetcher) FetchName(ctx context.Context, symbol string) (string, error) {
	endpoint := fmt.Sprintf("%s/v3/reference/tickers/%s", f.BaseURL, url.PathEscape(symbol))
	var result struct {
		Results struct {
			Ticker string `json:"ticker"`
			Name   string `json:"name"`
		} `json:"results"`
	}
	if err := f.get(ctx, endpoint, nil, &result); err != nil {
		return "", fmt.Errorf("fetch ticker details: %w", err)
	}
	if result.Results.Name == "" {
		return "", fmt.Errorf("fetch ticker details: no name for %s", symbol)
	}
	return result.Results.Name, nil
}

func (f *PolygonFetcher) fetchAggs(ctx context.Context, symbol string, span model.Timespan, from time.Time, limit int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/%s/%s/%s", f.BaseURL, url.PathEscape(symbol), span,
		from.Format("2006-01-02"), f.now().Format("2006-01-02"))
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", "50000")

	var aggs polygonAggs
	if err := f.get(ctx, endpoint, q, &aggs); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if aggs.Status == "ERROR" {
		return nil, fmt.Errorf("polygon api error: %s", aggs.Error)
	}
	bars := make([]model.OHLCV, len(aggs.Results))
	for i, r := range aggs.Results {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (f *PolygonFetcher) get(ctx context.Context, endpoint string, q url.Values, out interface{}) error {
	if q == nil {
		q = url.Values{}
	}
	if f.APIKey != "" {
		q.Set("apiKey", f.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// aggregateDailyToWeekly converts daily bars into weekly bars (Mon-Fri).
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.OHLCV
	week := daily[0]
	for _, d := range daily[1:] {
		y, w := d.Time.ISOWeek()
		cy, cw := week.Time.ISOWeek()
		if y != cy || w != cw {
			weekly = append(weekly, week)
			week = d
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
