package chart

import "math"

// Area is the plot rectangle in pixels; y grows downwards.
type Area struct {
	Left, Top, Right, Bottom float64
}

func (a Area) Width() float64  { return a.Right - a.Left }
func (a Area) Height() float64 { return a.Bottom - a.Top }

// Contains reports whether (x, y) lies inside the area, edges included.
func (a Area) Contains(x, y float64) bool {
	return x >= a.Left && x <= a.Right && y >= a.Top && y <= a.Bottom
}

// IndexScale maps period indexes in [Min, Max] onto [Left, Right].
type IndexScale struct {
	Min, Max    int
	Left, Right float64
}

func (s IndexScale) Pixel(i int) float64 {
	if s.Max == s.Min {
		return (s.Left + s.Right) / 2
	}
	return s.Left + float64(i-s.Min)/float64(s.Max-s.Min)*(s.Right-s.Left)
}

// Nearest returns the index closest to pixel x, clamped to the scale.
func (s IndexScale) Nearest(x float64) int {
	if s.Max == s.Min || s.Right == s.Left {
		return s.Min
	}
	i := s.Min + int(math.Round((x-s.Left)/(s.Right-s.Left)*float64(s.Max-s.Min)))
	if i < s.Min {
		return s.Min
	}
	if i > s.Max {
		return s.Max
	}
	return i
}

// PixelsPerIndex is the horizontal distance between two adjacent periods.
func (s IndexScale) PixelsPerIndex() float64 {
	if s.Max == s.Min {
		return s.Right - s.Left
	}
	return (s.Right - s.Left) / float64(s.Max-s.Min)
}

// LinearScale maps values in [Min, Max] onto [Bottom, Top].
type LinearScale struct {
	Min, Max    float64
	Top, Bottom float64
}

func (s LinearScale) Pixel(v float64) float64 {
	if s.Max == s.Min {
		return (s.Top + s.Bottom) / 2
	}
	return s.Bottom - (v-s.Min)/(s.Max-s.Min)*(s.Bottom-s.Top)
}

func (s LinearScale) Value(px float64) float64 {
	if s.Bottom == s.Top {
		return s.Min
	}
	return s.Min + (s.Bottom-px)/(s.Bottom-s.Top)*(s.Max-s.Min)
}

// Geometry is everything the overlay needs to place itself: the plot area and
// the scales of the current draw.
type Geometry struct {
	Area   Area
	X      IndexScale
	Y      LinearScale
	Volume LinearScale
}
