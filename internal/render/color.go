package render

import (
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockTracker/internal/chart"
)

// toColor converts an rgba() or #hex colour to a drawing colour.
func toColor(s string) drawing.Color {
	if r, g, b, a, ok := chart.ParseRGBA(s); ok {
		return drawing.Color{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
