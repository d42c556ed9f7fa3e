package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTracker/internal/model"
)

type botServer struct {
	mu   sync.Mutex
	sent []map[string]string
	fail int
}

func (b *botServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.fail > 0 {
			b.fail--
			http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
			return
		}
		var msg map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		b.sent = append(b.sent, msg)
	})
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("offset"))
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"text":" /stock aapl "}},
			{"update_id":8},
			{"update_id":9,"message":{"text":"/quiet"}}]}`))
	})
	return mux
}

func newNotifier(t *testing.T, b *botServer) *TelegramNotifier {
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	return n
}

func TestSend(t *testing.T) {
	b := &botServer{}
	n := newNotifier(t, b)
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	require.Len(t, b.sent, 1)
	assert.Equal(t, map[string]string{"chat_id": "42", "text": "<b>hi</b>", "parse_mode": "HTML"}, b.sent[0])

	b.fail = 1
	assert.ErrorContains(t, n.Send(context.Background(), "x"), "status 429")
}

func TestSendWithRetry(t *testing.T) {
	b := &botServer{fail: 2}
	n := newNotifier(t, b)
	require.NoError(t, SendWithRetry(context.Background(), n, "digest", 3, time.Millisecond))
	assert.Len(t, b.sent, 1)

	b.fail = 5
	err := SendWithRetry(context.Background(), n, "digest", 1, time.Millisecond)
	assert.ErrorContains(t, err, "all 2 retries exhausted")
}

func TestPollOnce(t *testing.T) {
	b := &botServer{}
	n := newNotifier(t, b)
	var got []string
	next, err := n.PollOnce(context.Background(), http.DefaultClient, 7, 0, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		if cmd == "/quiet" {
			return ""
		}
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"/stock aapl", "/quiet"}, got)
	require.Len(t, b.sent, 1)
	assert.Equal(t, "reply to /stock aapl", b.sent[0]["text"])
}

func TestFormatDigest(t *testing.T) {
	top := &model.TopStocks{
		Gainers:   []model.Stock{{Ticker: "NVDA", DayClose: 120.5, TodaysChangePerc: 4.321}},
		Losers:    []model.Stock{{Ticker: "T&T", DayClose: 17, TodaysChangePerc: -2.5}},
		TopTraded: []model.Stock{{Ticker: "TSLA", Volume: 98765432}},
	}
	msg := FormatDigest(top, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, msg, "2024-06-14")
	assert.Contains(t, msg, " 1. NVDA 120.50 (+4.32%)")
	assert.Contains(t, msg, " 1. T&amp;T 17.00 (-2.50%)")
	assert.Contains(t, msg, " 1. TSLA 98,765,432 shares")

	empty := FormatDigest(&model.TopStocks{}, time.Now())
	assert.Contains(t, empty, "none")
}

func TestFormatStock(t *testing.T) {
	s := &model.Stock{Ticker: "AAPL", Name: "Apple Inc.", DayClose: 190.1, TodaysChange: -1.2, TodaysChangePerc: -0.63,
		Volume: 1234567, DMA30: 185, DMA50: 180, DMA200: 175.5, DMA200PercDiff: 8.32, Low52w: 160, High52w: 200}
	msg := FormatStock(s)
	assert.Contains(t, msg, "<b>Apple Inc. (AAPL)</b>")
	assert.Contains(t, msg, "Close: 190.10 (-1.20, -0.63%)")
	assert.Contains(t, msg, "Volume: 1,234,567")
	assert.Contains(t, msg, "vs 200-DMA: +8.32%")
	assert.NotContains(t, msg, "Updated")

	assert.Contains(t, FormatStock(&model.Stock{Ticker: "NEW"}), "No data collected yet.")
}

type flaky struct{ errs []error }

func (f *flaky) Send(context.Context, string) error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func TestSendWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SendWithRetry(ctx, &flaky{errs: []error{errors.New("down")}}, "x", 3, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
