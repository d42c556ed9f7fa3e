package chart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"StockTracker/internal/model"
)

// ErrSuperseded is returned by ResetChart when a later request replaced it.
var ErrSuperseded = errors.New("chart request superseded")

// DataSource fetches the payload of one timeframe.
type DataSource interface {
	ChartData(ctx context.Context, ticker, timeframe string) (*model.ChartPayload, error)
}

// View is the presentation surface the widget drives. Calls are made with the
// widget lock held, so implementations must not call back into the widget.
type View interface {
	SetSpinner(visible bool)
	// SetChartVisible shows the chart and hides the missing-data placeholder, or
	// the other way round.
	SetChartVisible(visible bool)
	SetReadout(r Readout)
	SetActiveTimeframe(timeframe string)
	SetChangeBadge(b Badge)
	SetLegend(items []LegendItem)
	Draw(f Frame)
}

// Frame is one redraw: the chart, plus the overlay and tooltip when hovering.
type Frame struct {
	Chart    *Chart
	Geometry Geometry
	Overlay  *Overlay
	Tooltip  []string
}

type WidgetOptions struct {
	Area           Area
	Measurer       TextMeasurer
	SpinnerDelay   time.Duration
	TooltipEnabled bool
}

// Widget is the stock page chart: it owns the series store, the chart built from
// it and the overlay, and switches timeframes on request.
type Widget struct {
	mu sync.Mutex

	ticker string
	source DataSource
	view   View

	store     *SeriesStore
	chart     *Chart
	overlay   *OverlayState
	timeframe string

	area         Area
	measurer     TextMeasurer
	tooltip      bool
	spinnerDelay time.Duration

	generation uint64
	cancel     context.CancelFunc
	inflight   int

	// fraction of a period dragged but not yet applied
	panRemainder float64
}

func NewWidget(ticker string, source DataSource, view View, opts WidgetOptions) *Widget {
	if opts.SpinnerDelay <= 0 {
		opts.SpinnerDelay = SpinnerDelay
	}
	if opts.Measurer == nil {
		opts.Measurer = DefaultMeasurer
	}
	return &Widget{
		ticker:       ticker,
		source:       source,
		view:         view,
		store:        NewSeriesStore(),
		overlay:      NewOverlayState(),
		area:         opts.Area,
		measurer:     opts.Measurer,
		tooltip:      opts.TooltipEnabled,
		spinnerDelay: opts.SpinnerDelay,
	}
}

// ResetChart switches the widget to timeframe. A preloaded payload is applied
// directly; otherwise it is fetched from the data source. Only the most recent
// call is applied: an earlier fetch still in flight is cancelled and its
// response discarded with ErrSuperseded. On fetch failure the previous state is
// kept and the error returned.
func (w *Widget) ResetChart(ctx context.Context, timeframe string, preloaded *model.ChartPayload) error {
	if preloaded != nil {
		if err := preloaded.Validate(); err != nil {
			return fmt.Errorf("invalid chart data: %w", err)
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		w.generation++
		if w.cancel != nil {
			w.cancel()
			w.cancel = nil
		}
		w.apply(timeframe, preloaded)
		return nil
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	if w.cancel != nil {
		w.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.inflight++
	done := false
	timer := time.AfterFunc(w.spinnerDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !done {
			w.view.SetSpinner(true)
		}
	})
	w.mu.Unlock()

	payload, err := w.source.ChartData(fctx, w.ticker, timeframe)

	w.mu.Lock()
	defer w.mu.Unlock()
	done = true
	timer.Stop()
	cancel()
	w.inflight--
	if w.inflight == 0 {
		w.view.SetSpinner(false)
	}
	if gen != w.generation {
		return ErrSuperseded
	}
	w.cancel = nil
	if err != nil {
		log.Printf("[WARN] Chart data %s/%s unavailable: %v", w.ticker, timeframe, err)
		return fmt.Errorf("fetch chart data: %w", err)
	}
	if err := payload.Validate(); err != nil {
		log.Printf("[WARN] Chart data %s/%s rejected: %v", w.ticker, timeframe, err)
		return fmt.Errorf("invalid chart data: %w", err)
	}
	w.apply(timeframe, payload)
	return nil
}

func (w *Widget) apply(timeframe string, p *model.ChartPayload) {
	w.store.Replace(p)
	w.timeframe = timeframe
	w.overlay = NewOverlayState()
	w.chart = nil
	w.panRemainder = 0

	if w.store.HasData() {
		w.chart = NewChart(w.store, w.tooltip)
		w.view.SetChartVisible(true)
		w.view.SetReadout(ReadoutAt(w.store, w.store.Last()))
		w.view.SetLegend(w.overlay.Legend(w.chart))
		w.draw()
	} else {
		w.view.SetChartVisible(false)
		w.view.SetReadout(EmptyReadout())
		w.view.SetLegend(nil)
	}
	w.view.SetActiveTimeframe(timeframe)
	w.view.SetChangeBadge(ChangeBadge(p.ChangePerc))
}

func (w *Widget) draw() {
	if w.chart == nil {
		return
	}
	ov, geo, ok := w.overlay.Layout(w.chart, w.area, w.measurer)
	f := Frame{Chart: w.chart, Geometry: geo}
	if ok {
		f.Overlay = &ov
		w.view.SetReadout(ReadoutAt(w.store, ov.Index))
		if w.chart.TooltipEnabled {
			f.Tooltip = w.chart.TooltipLines(ov.Index, w.overlay.Visibility())
		}
	}
	w.view.Draw(f)
}

// Hover makes index the active point and redraws.
func (w *Widget) Hover(index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return
	}
	if index < 0 || index >= w.store.Len() {
		w.overlay.Clear()
	} else {
		w.overlay.SetActive(index)
	}
	w.draw()
}

// PointerMove hit-tests a pointer position against the nearest period.
func (w *Widget) PointerMove(x, y float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pointAt(x, y)
}

// Touch behaves like PointerMove; a tap activates the nearest period.
func (w *Widget) Touch(x, y float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pointAt(x, y)
}

func (w *Widget) pointAt(x, y float64) {
	if w.chart == nil {
		return
	}
	geo := w.chart.Geometry(w.area, w.overlay.Visibility())
	if i, ok := w.chart.HitTest(geo, x, y); ok {
		w.overlay.SetActive(i)
	} else {
		w.overlay.Clear()
	}
	w.draw()
}

// Leave clears the hover.
func (w *Widget) Leave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return
	}
	w.overlay.Clear()
	w.draw()
}

// ToggleSeries flips a moving average on or off by its legend label.
func (w *Widget) ToggleSeries(label string) error {
	id, ok := SeriesByLabel(label)
	if !ok || !id.IsMovingAverage() {
		return fmt.Errorf("toggle series: unknown legend item %q", label)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return fmt.Errorf("toggle series: no chart")
	}
	if _, ok := w.chart.Dataset(id); !ok {
		return fmt.Errorf("toggle series: %s not plotted", label)
	}
	w.overlay.Toggle(id)
	w.view.SetLegend(w.overlay.Legend(w.chart))
	w.draw()
	return nil
}

// SetTooltipEnabled turns the native tooltip on or off. The overlay is unaffected.
func (w *Widget) SetTooltipEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tooltip = enabled
	if w.chart == nil {
		return
	}
	w.chart.TooltipEnabled = enabled
	w.draw()
}

// Zoom zooms the x axis around pixel x; factor > 1 zooms in.
func (w *Widget) Zoom(factor, x float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return
	}
	geo := w.chart.Geometry(w.area, w.overlay.Visibility())
	w.chart.Zoom(factor, geo.X.Nearest(x))
	w.panRemainder = 0
	w.draw()
}

// Pan drags the x axis by dx pixels; dragging right reveals older periods.
func (w *Widget) Pan(dx float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return
	}
	geo := w.chart.Geometry(w.area, w.overlay.Visibility())
	ppi := geo.X.PixelsPerIndex()
	if ppi <= 0 {
		return
	}
	periods := w.panRemainder - dx/ppi
	whole := int(periods)
	w.panRemainder = periods - float64(whole)
	if whole == 0 {
		return
	}
	w.chart.Pan(whole)
	w.draw()
}

func (w *Widget) ResetZoom() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chart == nil {
		return
	}
	w.chart.ResetZoom()
	w.panRemainder = 0
	w.draw()
}

// Resize changes the plot area and redraws.
func (w *Widget) Resize(area Area) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.area = area
	w.draw()
}

// Timeframe returns the active timeframe.
func (w *Widget) Timeframe() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeframe
}

// Series returns a copy of the plotted data.
func (w *Widget) Series() model.ChartPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Payload()
}

// Chart returns the current chart, nil when the timeframe has no data.
func (w *Widget) Chart() *Chart {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chart
}

// Visibility returns a copy of the legend state.
func (w *Widget) Visibility() Visibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := NewVisibility()
	for k, v := range w.overlay.Visibility() {
		out[k] = v
	}
	return out
}
