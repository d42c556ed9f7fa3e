package chart

import "math"

// DatasetKind is how a dataset is drawn.
type DatasetKind string

const (
	KindLine DatasetKind = "line"
	KindBar  DatasetKind = "bar"
)

// AxisID names the y axis a dataset is plotted against.
type AxisID string

const (
	PriceAxis  AxisID = "y"
	VolumeAxis AxisID = "volumeAxis"
)

// Dataset is one drawable value stream. Data aliases the store slice.
type Dataset struct {
	Series           SeriesID
	Label            string
	Kind             DatasetKind
	Data             []float64
	Color            string
	Axis             AxisID
	BorderWidth      float64
	PointRadius      float64
	PointHoverRadius float64
	Tension          float64
}

type PriceAxisConfig struct {
	Position  string
	Precision int
}

type VolumeAxisConfig struct {
	Display bool
	Min     float64
	Max     float64
}

type InteractionConfig struct {
	Mode      string
	Intersect bool
}

type ZoomConfig struct {
	Mode     string
	Wheel    bool
	Pinch    bool
	Pan      bool
	MinRange int
}

// Chart is the renderable description of the current timeframe. It is rebuilt from
// scratch whenever the timeframe changes.
type Chart struct {
	Labels         []string
	Datasets       []Dataset
	PriceAxis      PriceAxisConfig
	VolumeAxis     VolumeAxisConfig
	Interaction    InteractionConfig
	ZoomOptions    ZoomConfig
	TooltipEnabled bool
	MaxXTicks      int

	store  *SeriesStore
	window Window
}

// NewChart builds the chart for the current store contents: a close line, one line
// per EMA when EMA data is present, and a volume bar on its own hidden axis.
func NewChart(store *SeriesStore, tooltip bool) *Chart {
	c := &Chart{
		Labels:         store.Dates,
		PriceAxis:      PriceAxisConfig{Position: "right", Precision: DecimalPrecision},
		VolumeAxis:     VolumeAxisConfig{Display: false, Min: 0, Max: store.MaxVolume() * VolumeAxisMaxMultiplier},
		Interaction:    InteractionConfig{Mode: "index", Intersect: false},
		ZoomOptions:    ZoomConfig{Mode: "x", Wheel: true, Pinch: true, Pan: true, MinRange: ZoomMinRange},
		TooltipEnabled: tooltip,
		MaxXTicks:      MaxXTicks,
		store:          store,
	}
	c.Datasets = append(c.Datasets, lineDataset(SeriesClose, store.Close, LineWidth, 0))
	if store.HasEMA {
		c.Datasets = append(c.Datasets,
			lineDataset(SeriesEMA30, store.EMA30, EMABorderWidth, EMAPointRadius),
			lineDataset(SeriesEMA50, store.EMA50, EMABorderWidth, EMAPointRadius),
			lineDataset(SeriesEMA200, store.EMA200, EMABorderWidth, EMAPointRadius),
		)
	}
	c.Datasets = append(c.Datasets, Dataset{
		Series: SeriesVolume,
		Label:  VolumeLabel,
		Kind:   KindBar,
		Data:   store.Volume,
		Color:  VolumeColor,
		Axis:   VolumeAxis,
	})
	c.ResetZoom()
	return c
}

func lineDataset(id SeriesID, data []float64, width, radius float64) Dataset {
	return Dataset{
		Series:           id,
		Label:            id.Label(),
		Kind:             KindLine,
		Data:             data,
		Color:            id.Color(),
		Axis:             PriceAxis,
		BorderWidth:      width,
		PointRadius:      radius,
		PointHoverRadius: PointHoverRadius,
		Tension:          Tension,
	}
}

// Store returns the series store the chart reads from.
func (c *Chart) Store() *SeriesStore { return c.store }

// Dataset looks up a dataset by series.
func (c *Chart) Dataset(id SeriesID) (*Dataset, bool) {
	for i := range c.Datasets {
		if c.Datasets[i].Series == id {
			return &c.Datasets[i], true
		}
	}
	return nil, false
}

// PointCount returns the number of points of every dataset keyed by label.
func (c *Chart) PointCount() map[string]int {
	out := make(map[string]int, len(c.Datasets))
	for _, ds := range c.Datasets {
		out[ds.Label] = len(ds.Data)
	}
	return out
}

// TooltipLines returns the tooltip title (the date) followed by one line per
// visible dataset, e.g. "Close-Price: 10.50" and "Volume: 1,000".
func (c *Chart) TooltipLines(index int, visible Visibility) []string {
	if index < 0 || index >= c.store.Len() {
		return nil
	}
	lines := []string{c.store.Dates[index]}
	for _, ds := range c.Datasets {
		if !visible.Visible(ds.Series) || index >= len(ds.Data) {
			continue
		}
		v := ds.Data[index]
		if ds.Series == SeriesVolume {
			lines = append(lines, ds.Label+": "+FormatVolume(v))
			continue
		}
		lines = append(lines, ds.Label+": "+FormatFixed(v))
	}
	return lines
}

// XTicks returns the indexes that get an x axis label, at most MaxXTicks spread
// evenly over the visible window.
func (c *Chart) XTicks() []int {
	if c.store.Len() == 0 {
		return nil
	}
	w := c.window
	count := w.Max - w.Min + 1
	step := int(math.Ceil(float64(count) / float64(c.MaxXTicks)))
	if step < 1 {
		step = 1
	}
	var ticks []int
	for i := w.Min; i <= w.Max; i += step {
		ticks = append(ticks, i)
	}
	return ticks
}

// Geometry maps data to pixels for the given plot area. The price axis spans the
// visible line values inside the zoom window, padded by 5% of the range.
func (c *Chart) Geometry(area Area, visible Visibility) Geometry {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ds := range c.Datasets {
		if ds.Axis != PriceAxis || !visible.Visible(ds.Series) {
			continue
		}
		for i := c.window.Min; i <= c.window.Max && i < len(ds.Data); i++ {
			lo = math.Min(lo, ds.Data[i])
			hi = math.Max(hi, ds.Data[i])
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return Geometry{
		Area: area,
		X:    IndexScale{Min: c.window.Min, Max: c.window.Max, Left: area.Left, Right: area.Right},
		Y:    LinearScale{Min: lo - pad, Max: hi + pad, Top: area.Top, Bottom: area.Bottom},
		Volume: LinearScale{
			Min: c.VolumeAxis.Min, Max: c.VolumeAxis.Max,
			Top: area.Top, Bottom: area.Bottom,
		},
	}
}
