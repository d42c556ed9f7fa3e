package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTracker/internal/model"
	"StockTracker/internal/store"
)

type fakeService struct {
	refreshed int
	err       error
	top       *model.TopStocks
}

func (f *fakeService) RefreshAll(context.Context) (int, error) {
	f.refreshed++
	return 3, f.err
}

func (f *fakeService) Stock(_ context.Context, ticker string) (*model.Stock, error) {
	if ticker != "AAPL" {
		return nil, store.ErrNotFound
	}
	return &model.Stock{Ticker: "AAPL", DayClose: 190}, nil
}

func (f *fakeService) Top(_ context.Context, limit int) (*model.TopStocks, error) {
	if f.top == nil {
		return nil, f.err
	}
	return f.top, nil
}

type recorder struct{ sent []string }

func (r *recorder) Send(_ context.Context, text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func newScheduler(svc *fakeService, n *recorder) *Scheduler {
	s := NewScheduler(context.Background(), svc, n)
	s.Now = func() time.Time { return time.Date(2024, 6, 14, 17, 0, 0, 0, time.UTC) }
	return s
}

func TestRegisterAll(t *testing.T) {
	s := newScheduler(&fakeService{}, &recorder{})
	require.NoError(t, s.RegisterAll("0 30 16 * * 1-5", "0 0 17 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s = NewScheduler(context.Background(), &fakeService{}, nil)
	require.NoError(t, s.RegisterAll("0 30 16 * * 1-5", "bad"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron", ""))
}

func TestTasks(t *testing.T) {
	svc := &fakeService{top: &model.TopStocks{Gainers: []model.Stock{{Ticker: "NVDA", DayClose: 1, TodaysChangePerc: 3}}}}
	n := &recorder{}
	s := newScheduler(svc, n)

	s.RunRefreshNow()
	assert.Equal(t, 1, svc.refreshed)

	s.digestTask()
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "2024-06-14")
	assert.Contains(t, n.sent[0], "NVDA")

	svc.top, svc.err = nil, errors.New("db down")
	s.digestTask()
	assert.Len(t, n.sent, 1)
}

func TestHandleCommand(t *testing.T) {
	svc := &fakeService{top: &model.TopStocks{}}
	s := newScheduler(svc, &recorder{})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/stock AAPL"), "Close: 190.00")
	assert.Contains(t, s.HandleCommand(ctx, "/stock NOPE"), "not found")
	assert.Equal(t, "Usage: /stock TICKER", s.HandleCommand(ctx, "/stock"))
	assert.Contains(t, s.HandleCommand(ctx, "/TOP"), "daily digest")
	assert.Equal(t, "✅ Refreshed 3 tickers", s.HandleCommand(ctx, "/refresh"))
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/stock TICKER")
	assert.Contains(t, s.HandleCommand(ctx, "  "), "Commands")
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeService{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
