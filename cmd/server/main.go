package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"StockTracker/internal/cache"
	"StockTracker/internal/chartdata"
	"StockTracker/internal/collector"
	"StockTracker/internal/config"
	"StockTracker/internal/notifier"
	"StockTracker/internal/scheduler"
	"StockTracker/internal/store"
	"StockTracker/internal/transport/httpapi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockTracker starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init cache
	var pc cache.Cache = cache.NewMemoryCache()
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("[WARN] redis %s unreachable, using in-memory cache: %v", cfg.Cache.RedisAddr, err)
			rc.Close()
		} else {
			pc = rc
			defer rc.Close()
		}
	}

	// Init fetcher and collector
	fetcher, err := collector.New(cfg.DataSource.Provider, cfg.DataSource.APIKey, cfg.Proxy)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher)
	col.DailyBars, col.WeeklyBars = cfg.DataSource.DailyBars, cfg.DataSource.WeeklyBars

	svc := chartdata.NewService(st, pc, col, cfg.CacheTTL())
	for _, t := range cfg.Tickers {
		if err := svc.Track(ctx, t.Symbol, t.Name); err != nil {
			log.Fatalf("[FATAL] track %s: %v", t.Symbol, err)
		}
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, n)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.DigestCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}

	srv, err := httpapi.NewServer(httpapi.Config{Addr: cfg.HTTP.Addr, Backend: svc, TopLimit: cfg.HTTP.TopLimit})
	if err != nil {
		log.Fatalf("[FATAL] init http server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: refresh immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	log.Printf("[INFO] StockTracker is listening on %s. Press Ctrl+C to stop.", cfg.HTTP.Addr)
	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	log.Println("[INFO] StockTracker stopped")
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	return store.NewSQLStore(cfg.Database.Driver, cfg.Database.DSN)
}
