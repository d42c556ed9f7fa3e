package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"StockTracker/internal/chart"
	"StockTracker/internal/chartdata"
	"StockTracker/internal/render"
	"StockTracker/internal/store"
)

// maxSnapshotSide bounds the PNG width and height.
const maxSnapshotSide = 4096

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, chartdata.ErrUnknownTimeframe):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleQueryStocks(c *gin.Context) {
	list, err := s.backend.QueryStocks(c.Request.Context(), c.Query("q"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleChartData(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}
	p, err := s.backend.ChartData(c.Request.Context(), ticker, c.DefaultQuery("timeframe", chartdata.DefaultTimeframe))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleTopStocks(c *gin.Context) {
	limit := s.topLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	top, err := s.backend.Top(c.Request.Context(), limit)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

// handleStockPage renders the stock page with the requested timeframe preloaded.
func (s *Server) handleStockPage(c *gin.Context) {
	ctx := c.Request.Context()
	stock, err := s.backend.Stock(ctx, c.Param("ticker"))
	if err != nil {
		abort(c, err)
		return
	}
	timeframe := c.DefaultQuery("timeframe", chartdata.DefaultTimeframe)
	p, err := s.backend.ChartData(ctx, stock.Ticker, timeframe)
	if err != nil {
		abort(c, err)
		return
	}

	var ch *chart.Chart
	if series := chart.NewSeriesStore(); p.Validate() == nil {
		series.Replace(p)
		if series.HasData() {
			ch = chart.NewChart(series, false)
		}
	}
	var buf bytes.Buffer
	if err := render.Page(&buf, stock, timeframe, ch); err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleSnapshot paints the chart of one timeframe as a PNG, optionally with the
// hover overlay at ?hover=<index>.
func (s *Server) handleSnapshot(c *gin.Context) {
	opt := render.SnapshotOptions{Hover: -1}
	for _, q := range []struct {
		name string
		dst  *int
		min  int
	}{
		{"width", &opt.Width, 1},
		{"height", &opt.Height, 1},
		{"hover", &opt.Hover, -1},
	} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < q.min || n > maxSnapshotSide {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + q.name})
			return
		}
		*q.dst = n
	}

	p, err := s.backend.ChartData(c.Request.Context(), c.Param("ticker"), c.DefaultQuery("timeframe", chartdata.DefaultTimeframe))
	if err != nil {
		abort(c, err)
		return
	}
	if p.Len() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chart data"})
		return
	}
	if opt.Hover >= p.Len() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hover"})
		return
	}
	var buf bytes.Buffer
	if err := render.SnapshotPayload(&buf, p, opt); err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
