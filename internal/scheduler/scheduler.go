package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"StockTracker/internal/model"
	"StockTracker/internal/notifier"
)

// DigestSize is the number of stocks per digest list.
const DigestSize = 5

// Service is the part of the chart data service the scheduler drives.
type Service interface {
	RefreshAll(ctx context.Context) (int, error)
	Stock(ctx context.Context, ticker string) (*model.Stock, error)
	Top(ctx context.Context, limit int) (*model.TopStocks, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Service  Service
	Notifier notifier.Notifier // nil disables digests
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler. n may be nil.
func NewScheduler(ctx context.Context, svc Service, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: n,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the refresh task and, when a notifier is set, the digest.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if s.Notifier == nil {
		return nil
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// RunRefreshNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	start := s.Now()
	n, err := s.Service.RefreshAll(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] refresh: %v", err)
		return
	}
	log.Printf("[INFO] refresh task done: %d tickers in %v", n, s.Now().Sub(start).Round(time.Millisecond))
}

func (s *Scheduler) digestTask() {
	log.Println("[INFO] running digest task")
	msg, err := s.digest(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] digest: %v", err)
		return
	}
	s.trySend(msg)
}

func (s *Scheduler) digest(ctx context.Context) (string, error) {
	top, err := s.Service.Top(ctx, DigestSize)
	if err != nil {
		return "", err
	}
	return notifier.FormatDigest(top, s.Now()), nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	switch strings.ToLower(fields[0]) {
	case "/top":
		msg, err := s.digest(ctx)
		if err != nil {
			log.Printf("[ERROR] digest: %v", err)
			return fmt.Sprintf("❌ Could not load top stocks: %v", err)
		}
		return msg
	case "/stock":
		if len(fields) < 2 {
			return "Usage: /stock TICKER"
		}
		st, err := s.Service.Stock(ctx, fields[1])
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatStock(st)
	case "/refresh":
		n, err := s.Service.RefreshAll(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Refresh failed after %d tickers: %v", n, err)
		}
		return fmt.Sprintf("✅ Refreshed %d tickers", n)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3, time.Second); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
