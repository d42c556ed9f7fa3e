package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StockTracker/internal/model"
)

// DefaultTopLimit is the number of stocks per /top_stocks list.
const DefaultTopLimit = 20

// Backend is what the HTTP layer needs from the chart data service.
type Backend interface {
	ChartData(ctx context.Context, ticker, timeframe string) (*model.ChartPayload, error)
	Stock(ctx context.Context, ticker string) (*model.Stock, error)
	QueryStocks(ctx context.Context, q string) ([]model.Suggestion, error)
	Top(ctx context.Context, limit int) (*model.TopStocks, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr     string
	Backend  Backend
	TopLimit int
}

// Server serves the JSON endpoints, the stock page and the chart snapshot.
type Server struct {
	addr     string
	backend  Backend
	topLimit int
	router   *gin.Engine
}

// NewServer builds the router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = DefaultTopLimit
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		addr:     cfg.Addr,
		backend:  cfg.Backend,
		topLimit: cfg.TopLimit,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/query_stocks", s.handleQueryStocks)
	s.router.GET("/chart-data", s.handleChartData)
	s.router.GET("/top_stocks", s.handleTopStocks)
	s.router.GET("/stocks/:ticker", s.handleStockPage)
	s.router.GET("/stocks/:ticker/chart.png", s.handleSnapshot)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
