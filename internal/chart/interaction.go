package chart

import "math"

// Window is the inclusive range of indexes currently shown on the x axis.
type Window struct {
	Min, Max int
}

// Span is the number of index units between the window edges.
func (w Window) Span() int { return w.Max - w.Min }

func (c *Chart) Window() Window { return c.window }

// ResetZoom shows every period.
func (c *Chart) ResetZoom() {
	last := c.store.Len() - 1
	if last < 0 {
		last = 0
	}
	c.window = Window{Min: 0, Max: last}
}

// Zoom scales the window around index center. factor > 1 zooms in, factor < 1
// zooms out. The window never shrinks below the configured minimum range and never
// leaves the data.
func (c *Chart) Zoom(factor float64, center int) {
	if factor <= 0 || c.store.Len() < 2 {
		return
	}
	full := c.store.Len() - 1
	span := c.window.Span()
	newSpan := int(math.Round(float64(span) / factor))
	minRange := c.ZoomOptions.MinRange
	if minRange > full {
		minRange = full
	}
	if newSpan < minRange {
		newSpan = minRange
	}
	if newSpan > full {
		newSpan = full
	}
	if newSpan == span {
		return
	}
	if center < c.window.Min {
		center = c.window.Min
	}
	if center > c.window.Max {
		center = c.window.Max
	}
	ratio := 0.5
	if span > 0 {
		ratio = float64(center-c.window.Min) / float64(span)
	}
	lo := center - int(math.Round(ratio*float64(newSpan)))
	c.window = clampWindow(lo, newSpan, full)
}

// Pan shifts the window by delta periods; positive moves towards newer data.
func (c *Chart) Pan(delta int) {
	if delta == 0 || c.store.Len() < 2 {
		return
	}
	c.window = clampWindow(c.window.Min+delta, c.window.Span(), c.store.Len()-1)
}

func clampWindow(lo, span, full int) Window {
	if lo < 0 {
		lo = 0
	}
	if lo+span > full {
		lo = full - span
	}
	return Window{Min: lo, Max: lo + span}
}

// HitTest resolves a pointer position to the nearest period index. ok is false
// when the pointer is outside the plot area or there is no data.
func (c *Chart) HitTest(geo Geometry, x, y float64) (int, bool) {
	if c.store.Len() == 0 || !geo.Area.Contains(x, y) {
		return -1, false
	}
	return geo.X.Nearest(x), true
}
