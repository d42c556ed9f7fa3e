package chart

import "time"

// Dataset labels, shared with the readout and the legend.
const (
	DateLabel       = "Date"
	ClosePriceLabel = "Close-Price"
	EMA30Label      = "30-EMA"
	EMA50Label      = "50-EMA"
	EMA200Label     = "200-EMA"
	VolumeLabel     = "Volume"
)

// DataMissingText is shown wherever a value is not available.
const DataMissingText = "N/A"

const (
	DateColor       = "rgba(100, 100, 100, 1)"
	VolumeColor     = "rgba(78, 140, 255, 0.75)"
	FillColor       = "rgba(255, 255, 255, 1)"
	StrokeStyle     = "rgba(0, 0, 0, 0.4)"
	PointHoverColor = "rgba(100, 0, 255, 1)"
	ClosePriceColor = "rgba(13, 110, 253, 1)"
	EMA30Color      = "rgba(255, 159, 64, 1)"
	EMA50Color      = "rgba(153, 102, 255, 1)"
	EMA200Color     = "rgba(255, 99, 132, 1)"
	PositiveColor   = "rgba(25, 135, 84, 1)"
	NegativeColor   = "rgba(220, 53, 69, 1)"
)

const (
	DecimalPrecision        = 2
	MaxXTicks               = 12
	ZoomMinRange            = 5 // minimum number of index units visible when zoomed in
	VolumeAxisMaxMultiplier = 5 // volume bars take 1/multiplier of the plot height
	DisplayTooltipDefault   = false
	SpinnerDelay            = 200 * time.Millisecond
)

const (
	LabelFontSize    = 12
	BoxPadding       = 4
	XOffset          = 10
	YOffset          = 18
	LineWidth        = 1
	PointHoverRadius = 7
	EMABorderWidth   = 1.5
	EMAPointRadius   = 0
	Tension          = 0.3
)

// LineDash is the crosshair dash pattern.
var LineDash = []float64{5, 5}
