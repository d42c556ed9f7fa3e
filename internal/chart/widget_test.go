package chart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockTracker/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]*model.ChartPayload
	gates    map[string]chan struct{}
	errs     map[string]error
	ctxs     map[string]context.Context
	calls    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		payloads: map[string]*model.ChartPayload{},
		gates:    map[string]chan struct{}{},
		errs:     map[string]error{},
		ctxs:     map[string]context.Context{},
	}
}

// ChartData blocks on the timeframe's gate, if any, and ignores cancellation so
// that late responses still arrive.
func (f *fakeSource) ChartData(ctx context.Context, ticker, timeframe string) (*model.ChartPayload, error) {
	f.mu.Lock()
	f.calls++
	f.ctxs[timeframe] = ctx
	gate := f.gates[timeframe]
	p, err := f.payloads[timeframe], f.errs[timeframe]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return p, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) ctx(timeframe string) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxs[timeframe]
}

type fakeView struct {
	mu           sync.Mutex
	spinner      []bool
	chartVisible bool
	readout      Readout
	timeframe    string
	badge        Badge
	legend       []LegendItem
	frames       []Frame
}

func (v *fakeView) SetSpinner(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spinner = append(v.spinner, visible)
}

func (v *fakeView) SetChartVisible(visible bool) { v.chartVisible = visible }
func (v *fakeView) SetReadout(r Readout)         { v.readout = r }
func (v *fakeView) SetActiveTimeframe(tf string) { v.timeframe = tf }
func (v *fakeView) SetChangeBadge(b Badge)       { v.badge = b }
func (v *fakeView) SetLegend(items []LegendItem) { v.legend = items }
func (v *fakeView) Draw(f Frame)                 { v.frames = append(v.frames, f) }

func (v *fakeView) spinnerShown() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.spinner {
		if s {
			return true
		}
	}
	return false
}

func (v *fakeView) lastSpinner() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.spinner) > 0 && v.spinner[len(v.spinner)-1]
}

func (v *fakeView) lastFrame() Frame {
	return v.frames[len(v.frames)-1]
}

var testArea = Area{Left: 0, Top: 0, Right: 500, Bottom: 300}

func newTestWidget(src DataSource, view View) *Widget {
	return NewWidget("AAPL", src, view, WidgetOptions{Area: testArea, SpinnerDelay: 20 * time.Millisecond})
}

func TestWidgetEndToEndExample(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)

	require.NoError(t, w.ResetChart(context.Background(), "1Y", examplePayload()))

	c := w.Chart()
	require.NotNil(t, c)
	assert.Equal(t, map[string]int{ClosePriceLabel: 2, VolumeLabel: 2}, c.PointCount())
	assert.Equal(t, 1000.0, c.VolumeAxis.Max)
	assert.Equal(t, Badge{Text: "+5.00%", Color: PositiveColor}, view.badge)
	assert.True(t, view.chartVisible)
	assert.Equal(t, "1Y", view.timeframe)
	assert.Equal(t, "10.50", view.readout.ClosePrice)
	assert.Empty(t, view.legend)

	w.Hover(0)
	assert.Equal(t, "10.00", view.readout.ClosePrice)
	assert.Equal(t, "100", view.readout.Volume)

	w.Hover(1)
	assert.Equal(t, "10.50", view.readout.ClosePrice)
	f := view.lastFrame()
	require.NotNil(t, f.Overlay)
	label, ok := f.Overlay.Label(SeriesClose)
	require.True(t, ok)
	assert.Equal(t, "10.50", label.Text)
	assert.Equal(t, "2024-01-02", f.Overlay.DateBox.Text)
	assert.Nil(t, f.Tooltip)
}

func TestWidgetFetchesTimeframe(t *testing.T) {
	src := newFakeSource()
	src.payloads["3M"] = emaPayload(30)
	view := &fakeView{}
	w := newTestWidget(src, view)

	require.NoError(t, w.ResetChart(context.Background(), "3M", nil))
	assert.Equal(t, "3M", w.Timeframe())
	assert.Equal(t, *emaPayload(30), withChange(w.Series(), 0))
	assert.Len(t, view.legend, 3)
	assert.False(t, view.spinnerShown())
	assert.False(t, view.lastSpinner())
}

func withChange(p model.ChartPayload, c float64) model.ChartPayload {
	p.ChangePerc = c
	return p
}

func TestWidgetLaterRequestWins(t *testing.T) {
	src := newFakeSource()
	first, second := emaPayload(10), examplePayload()
	src.payloads["1M"] = first
	src.payloads["5Y"] = second
	src.gates["1M"] = make(chan struct{})
	src.gates["5Y"] = make(chan struct{})
	view := &fakeView{}
	w := newTestWidget(src, view)

	errs := make(chan error, 2)
	go func() { errs <- w.ResetChart(context.Background(), "1M", nil) }()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	go func() { errs <- w.ResetChart(context.Background(), "5Y", nil) }()
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	assert.Error(t, src.ctx("1M").Err(), "earlier fetch is cancelled")

	// the later request resolves first, the stale one after it
	close(src.gates["5Y"])
	require.NoError(t, <-errs)
	close(src.gates["1M"])
	assert.ErrorIs(t, <-errs, ErrSuperseded)

	assert.Equal(t, withChange(*second, 0), w.Series())
	assert.Equal(t, "5Y", w.Timeframe())
	assert.False(t, view.lastSpinner())
}

func TestWidgetStaleResponseArrivingFirstIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.payloads["1M"] = emaPayload(10)
	src.payloads["1Y"] = examplePayload()
	src.gates["1M"] = make(chan struct{})
	src.gates["1Y"] = make(chan struct{})
	w := newTestWidget(src, &fakeView{})

	errs := make(chan error, 2)
	go func() { errs <- w.ResetChart(context.Background(), "1M", nil) }()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	go func() { errs <- w.ResetChart(context.Background(), "1Y", nil) }()
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	close(src.gates["1M"])
	assert.ErrorIs(t, <-errs, ErrSuperseded)
	assert.Zero(t, w.Series().Len())

	close(src.gates["1Y"])
	require.NoError(t, <-errs)
	assert.Equal(t, 2, w.Series().Len())
}

func TestWidgetSpinnerAfterDelay(t *testing.T) {
	src := newFakeSource()
	src.payloads["MAX"] = examplePayload()
	src.gates["MAX"] = make(chan struct{})
	view := &fakeView{}
	w := newTestWidget(src, view)

	errs := make(chan error, 1)
	go func() { errs <- w.ResetChart(context.Background(), "MAX", nil) }()
	require.Eventually(t, view.spinnerShown, time.Second, time.Millisecond)

	close(src.gates["MAX"])
	require.NoError(t, <-errs)
	assert.False(t, view.lastSpinner())
}

func TestWidgetFetchErrorKeepsState(t *testing.T) {
	src := newFakeSource()
	src.errs["6M"] = errors.New("boom")
	view := &fakeView{}
	w := newTestWidget(src, view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", examplePayload()))
	before := w.Chart()

	err := w.ResetChart(context.Background(), "6M", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.Same(t, before, w.Chart())
	assert.Equal(t, "1Y", w.Timeframe())
	assert.Equal(t, "1Y", view.timeframe)
	assert.Equal(t, 2, w.Series().Len())
	assert.False(t, view.lastSpinner())
}

func TestWidgetRejectsMismatchedPayload(t *testing.T) {
	w := newTestWidget(newFakeSource(), &fakeView{})
	bad := examplePayload()
	bad.VolumeData = bad.VolumeData[:1]
	assert.Error(t, w.ResetChart(context.Background(), "1Y", bad))
	assert.Nil(t, w.Chart())
}

func TestWidgetEmptyPayload(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", examplePayload()))

	require.NoError(t, w.ResetChart(context.Background(), "YTD", &model.ChartPayload{ChangePerc: -3.25}))
	assert.Nil(t, w.Chart())
	assert.False(t, view.chartVisible)
	assert.Equal(t, EmptyReadout(), view.readout)
	assert.Equal(t, Badge{Text: "-3.25%", Color: NegativeColor}, view.badge)
	assert.Equal(t, "YTD", view.timeframe)

	// interactions without a chart are no-ops
	w.Hover(0)
	w.Zoom(2, 10)
	assert.Error(t, w.ToggleSeries(EMA30Label))
}

func TestWidgetLegendToggle(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", emaPayload(30)))

	w.Hover(5)
	_, ok := view.lastFrame().Overlay.Label(SeriesEMA50)
	require.True(t, ok)

	require.NoError(t, w.ToggleSeries(EMA50Label))
	assert.False(t, w.Visibility().Visible(SeriesEMA50))
	assert.Equal(t, "line-through", view.legend[1].TextDecoration())
	w.Hover(6)
	_, ok = view.lastFrame().Overlay.Label(SeriesEMA50)
	assert.False(t, ok)
	assert.Equal(t, "104.00", view.readout.EMA50, "readout still tracks every series")

	require.NoError(t, w.ToggleSeries(EMA50Label))
	assert.Equal(t, "none", view.legend[1].TextDecoration())
	w.Hover(7)
	_, ok = view.lastFrame().Overlay.Label(SeriesEMA50)
	assert.True(t, ok)

	assert.Error(t, w.ToggleSeries(VolumeLabel))
	assert.Error(t, w.ToggleSeries("nope"))
}

func TestWidgetTooltipToggle(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", examplePayload()))
	w.Hover(1)

	w.SetTooltipEnabled(true)
	f := view.lastFrame()
	require.NotNil(t, f.Overlay)
	assert.Equal(t, 1, f.Overlay.Index)
	assert.Contains(t, f.Tooltip, "Close-Price: 10.50")
	assert.Contains(t, f.Tooltip, "Volume: 200")

	w.SetTooltipEnabled(false)
	f = view.lastFrame()
	assert.Nil(t, f.Tooltip)
	assert.NotNil(t, f.Overlay)
}

func TestWidgetTouchAndPointer(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", emaPayload(11)))

	w.Touch(500, 100)
	require.NotNil(t, view.lastFrame().Overlay)
	assert.Equal(t, 10, view.lastFrame().Overlay.Index)

	w.PointerMove(0, 100)
	assert.Equal(t, 0, view.lastFrame().Overlay.Index)

	w.PointerMove(250, 1000)
	assert.Nil(t, view.lastFrame().Overlay)

	w.Hover(3)
	w.Leave()
	assert.Nil(t, view.lastFrame().Overlay)
}

func TestWidgetZoomAndPan(t *testing.T) {
	view := &fakeView{}
	w := newTestWidget(newFakeSource(), view)
	require.NoError(t, w.ResetChart(context.Background(), "1Y", emaPayload(50)))

	w.Zoom(100, 250)
	win := w.Chart().Window()
	assert.Equal(t, ZoomMinRange, win.Span())

	w.Pan(-10000)
	assert.Equal(t, 49, w.Chart().Window().Max)

	w.ResetZoom()
	assert.Equal(t, Window{Min: 0, Max: 49}, w.Chart().Window())

	// a new timeframe resets the legend state
	require.NoError(t, w.ToggleSeries(EMA30Label))
	require.NoError(t, w.ResetChart(context.Background(), "5Y", emaPayload(50)))
	assert.True(t, w.Visibility().Visible(SeriesEMA30))
}

func TestWidgetPanAccumulatesSubPeriodDrags(t *testing.T) {
	w := newTestWidget(newFakeSource(), &fakeView{})
	require.NoError(t, w.ResetChart(context.Background(), "1Y", emaPayload(200)))
	w.Zoom(10, 250)
	start := w.Chart().Window()
	require.Greater(t, start.Min, 10)

	ppi := w.Chart().Geometry(testArea, w.Visibility()).X.PixelsPerIndex()
	require.Greater(t, ppi, 4.0)

	// nine quarter-period drags to the left add up to two whole periods
	for i := 0; i < 9; i++ {
		w.Pan(-ppi / 4)
	}
	assert.Equal(t, start.Min+2, w.Chart().Window().Min)
	assert.Equal(t, start.Span(), w.Chart().Window().Span())

	// the leftover quarter is kept when dragging back
	for i := 0; i < 10; i++ {
		w.Pan(ppi / 4)
	}
	assert.Equal(t, start.Min, w.Chart().Window().Min)
}
