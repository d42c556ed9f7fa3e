package chart

// TextMeasurer measures rendered text width in pixels at LabelFontSize.
type TextMeasurer interface {
	MeasureText(text string) float64
}

// FixedWidthMeasurer assumes every glyph is the same width.
type FixedWidthMeasurer float64

// DefaultMeasurer approximates a 12px sans-serif font.
const DefaultMeasurer = FixedWidthMeasurer(7)

func (m FixedWidthMeasurer) MeasureText(text string) float64 {
	return float64(len([]rune(text))) * float64(m)
}

type Point struct {
	X, Y float64
}

type Segment struct {
	From, To Point
}

type Rect struct {
	X, Y, W, H float64
}

// TextAlign is the horizontal anchor of a label's text position.
type TextAlign string

const (
	AlignCenter TextAlign = "center"
	AlignLeft   TextAlign = "left"
)

// LabelBox is a filled, stroked rectangle with one line of text.
type LabelBox struct {
	Series SeriesID
	Text   string
	Color  string
	Box    Rect
	TextAt Point
	Align  TextAlign
}

// Crosshair is the pair of dashed lines through the hovered point.
type Crosshair struct {
	Vertical   Segment
	Horizontal Segment
	Dash       []float64
	Width      float64
	Color      string
}

// Overlay is everything drawn on top of the chart for one hover index.
type Overlay struct {
	Index     int
	Crosshair Crosshair
	DateBox   LabelBox
	Labels    []LabelBox
}

// Label returns the value box for a series.
func (o Overlay) Label(id SeriesID) (LabelBox, bool) {
	for _, l := range o.Labels {
		if l.Series == id {
			return l, true
		}
	}
	return LabelBox{}, false
}

// ComputeOverlayLayout places the crosshair, the date box below the x axis and
// one value box per visible price series at the right of the plot. It reports
// false when there is no active hover.
func ComputeOverlayLayout(hover int, store *SeriesStore, visible Visibility, geo Geometry, m TextMeasurer) (Overlay, bool) {
	if store == nil || hover < 0 || hover >= store.Len() || hover < geo.X.Min || hover > geo.X.Max {
		return Overlay{}, false
	}
	closeVal, ok := store.ValueAt(SeriesClose, hover)
	if !ok {
		return Overlay{}, false
	}
	if m == nil {
		m = DefaultMeasurer
	}
	area := geo.Area
	x := geo.X.Pixel(hover)
	y := geo.Y.Pixel(closeVal)

	o := Overlay{
		Index: hover,
		Crosshair: Crosshair{
			Vertical:   Segment{From: Point{x, area.Top}, To: Point{x, area.Bottom}},
			Horizontal: Segment{From: Point{area.Left, y}, To: Point{area.Right, y}},
			Dash:       LineDash,
			Width:      LineWidth,
			Color:      StrokeStyle,
		},
	}

	date := store.Dates[hover]
	w := m.MeasureText(date)
	dateY := area.Bottom + YOffset
	o.DateBox = LabelBox{
		Series: -1,
		Text:   date,
		Color:  DateColor,
		Box: Rect{
			X: x - w/2 - BoxPadding/2,
			Y: dateY - LabelFontSize/2 - BoxPadding/2,
			W: w + BoxPadding,
			H: LabelFontSize + BoxPadding,
		},
		TextAt: Point{x, dateY},
		Align:  AlignCenter,
	}

	// Moving averages first so the close box is drawn last.
	for _, id := range []SeriesID{SeriesEMA200, SeriesEMA50, SeriesEMA30, SeriesClose} {
		if !visible.Visible(id) {
			continue
		}
		v, ok := store.ValueAt(id, hover)
		if !ok {
			continue
		}
		text := FormatFixed(v)
		tw := m.MeasureText(text)
		ly := geo.Y.Pixel(v)
		lx := area.Right + XOffset
		o.Labels = append(o.Labels, LabelBox{
			Series: id,
			Text:   text,
			Color:  id.Color(),
			Box: Rect{
				X: lx - BoxPadding/2,
				Y: ly - LabelFontSize/2 - BoxPadding/2,
				W: tw + BoxPadding,
				H: LabelFontSize + BoxPadding,
			},
			TextAt: Point{lx, ly},
			Align:  AlignLeft,
		})
	}
	return o, true
}

// OverlayState is the hover/legend overlay attached to one chart: the active
// hover index and the single visibility map used for drawing and for value boxes.
type OverlayState struct {
	visible Visibility
	active  int
}

func NewOverlayState() *OverlayState {
	return &OverlayState{visible: NewVisibility(), active: -1}
}

// Active returns the hovered index.
func (o *OverlayState) Active() (int, bool) {
	return o.active, o.active >= 0
}

func (o *OverlayState) SetActive(i int) { o.active = i }

func (o *OverlayState) Clear() { o.active = -1 }

func (o *OverlayState) Visibility() Visibility { return o.visible }

// Toggle flips the visibility of a series and returns the new state.
func (o *OverlayState) Toggle(id SeriesID) bool { return o.visible.Toggle(id) }

// Legend returns the legend entries for the chart with their current state.
func (o *OverlayState) Legend(c *Chart) []LegendItem {
	return Legend(c, o.visible)
}

// Layout computes the overlay for the active index.
func (o *OverlayState) Layout(c *Chart, area Area, m TextMeasurer) (Overlay, Geometry, bool) {
	geo := c.Geometry(area, o.visible)
	if o.active < 0 {
		return Overlay{}, geo, false
	}
	ov, ok := ComputeOverlayLayout(o.active, c.Store(), o.visible, geo, m)
	return ov, geo, ok
}
