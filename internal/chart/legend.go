package chart

// Visibility records which series are shown. Series missing from the map are visible.
type Visibility map[SeriesID]bool

func NewVisibility() Visibility {
	return Visibility{}
}

func (v Visibility) Visible(id SeriesID) bool {
	shown, ok := v[id]
	return !ok || shown
}

// Toggle flips a series and returns its new state.
func (v Visibility) Toggle(id SeriesID) bool {
	shown := !v.Visible(id)
	v[id] = shown
	return shown
}

// LegendItem is one clickable legend entry.
type LegendItem struct {
	Series SeriesID
	Label  string
	Color  string
	Hidden bool
}

// TextDecoration is the CSS decoration for the item label.
func (i LegendItem) TextDecoration() string {
	if i.Hidden {
		return "line-through"
	}
	return "none"
}

// Legend lists the moving average datasets of the chart; close and volume are
// not toggleable.
func Legend(c *Chart, v Visibility) []LegendItem {
	if c == nil {
		return nil
	}
	var items []LegendItem
	for _, ds := range c.Datasets {
		if !ds.Series.IsMovingAverage() {
			continue
		}
		items = append(items, LegendItem{
			Series: ds.Series,
			Label:  ds.Label,
			Color:  ds.Color,
			Hidden: !v.Visible(ds.Series),
		})
	}
	return items
}
