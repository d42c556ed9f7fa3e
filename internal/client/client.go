package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StockTracker/internal/model"
)

// Client talks to a running StockTracker server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// ChartData fetches the payload of one timeframe.
func (c *Client) ChartData(ctx context.Context, ticker, timeframe string) (*model.ChartPayload, error) {
	var p model.ChartPayload
	q := url.Values{"ticker": {ticker}, "timeframe": {timeframe}}
	if err := c.getJSON(ctx, "/chart-data", q, &p); err != nil {
		return nil, fmt.Errorf("chart data %s/%s: %w", ticker, timeframe, err)
	}
	return &p, nil
}

// QueryStocks fetches autocomplete suggestions.
func (c *Client) QueryStocks(ctx context.Context, q string) ([]model.Suggestion, error) {
	var out []model.Suggestion
	if err := c.getJSON(ctx, "/query_stocks", url.Values{"q": {q}}, &out); err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	return out, nil
}

// Top fetches the top stocks lists; limit <= 0 uses the server default.
func (c *Client) Top(ctx context.Context, limit int) (*model.TopStocks, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var top model.TopStocks
	if err := c.getJSON(ctx, "/top_stocks", q, &top); err != nil {
		return nil, fmt.Errorf("top stocks: %w", err)
	}
	return &top, nil
}

// Snapshot downloads the PNG chart of a ticker into w.
func (c *Client) Snapshot(ctx context.Context, w io.Writer, ticker, timeframe string, hover int) error {
	q := url.Values{"timeframe": {timeframe}}
	if hover >= 0 {
		q.Set("hover", strconv.Itoa(hover))
	}
	resp, err := c.get(ctx, "/stocks/"+url.PathEscape(ticker)+"/chart.png", q)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("snapshot %s: %w", ticker, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &body) != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(raw))
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: body.Error}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
