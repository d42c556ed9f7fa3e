// Package search is the ticker autocomplete model behind the search box.
package search

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"StockTracker/internal/model"
)

// MinQueryLength is the shortest input that triggers a lookup.
const MinQueryLength = 2

// Source answers /query_stocks lookups.
type Source interface {
	QueryStocks(ctx context.Context, q string) ([]model.Suggestion, error)
}

// Suggester turns search box input into suggestions.
type Suggester struct {
	source Source
}

func NewSuggester(source Source) *Suggester {
	return &Suggester{source: source}
}

// Suggest returns the suggestions for text. Short input and lookup failures
// both yield an empty list.
func (s *Suggester) Suggest(ctx context.Context, text string) []model.Suggestion {
	q := strings.TrimSpace(text)
	if len([]rune(q)) < MinQueryLength {
		return []model.Suggestion{}
	}
	list, err := s.source.QueryStocks(ctx, q)
	if err != nil {
		log.Printf("[WARN] Suggestions for %q failed: %v", q, err)
		return []model.Suggestion{}
	}
	if list == nil {
		list = []model.Suggestion{}
	}
	return list
}

// TargetURL is the stock page a suggestion navigates to.
func TargetURL(ticker string) string {
	return "/stocks/" + url.PathEscape(ticker)
}

// List is the dropdown: keyboard and pointer navigation over the current
// suggestions. No entry is active until the user moves to one.
type List struct {
	items  []model.Suggestion
	active int
}

func NewList(items []model.Suggestion) *List {
	return &List{items: items, active: -1}
}

// Items returns the suggestions shown.
func (l *List) Items() []model.Suggestion { return l.items }

// Len returns the number of suggestions shown.
func (l *List) Len() int { return len(l.items) }

// Set replaces the suggestions and clears the active entry.
func (l *List) Set(items []model.Suggestion) {
	l.items = items
	l.active = -1
}

// Next moves down, wrapping to the top.
func (l *List) Next() {
	if len(l.items) == 0 {
		return
	}
	l.active = (l.active + 1) % len(l.items)
}

// Prev moves up, wrapping to the bottom.
func (l *List) Prev() {
	if len(l.items) == 0 {
		return
	}
	if l.active <= 0 {
		l.active = len(l.items) - 1
		return
	}
	l.active--
}

// Hover makes entry i active; out of range indexes are ignored.
func (l *List) Hover(i int) {
	if i >= 0 && i < len(l.items) {
		l.active = i
	}
}

// Active returns the active entry.
func (l *List) Active() (model.Suggestion, bool) {
	if l.active < 0 || l.active >= len(l.items) {
		return model.Suggestion{}, false
	}
	return l.items[l.active], true
}

// Enter returns the page of the active entry.
func (l *List) Enter() (string, bool) {
	s, ok := l.Active()
	if !ok {
		return "", false
	}
	return TargetURL(s.Ticker), true
}

// Click activates entry i and returns its page.
func (l *List) Click(i int) (string, bool) {
	if i < 0 || i >= len(l.items) {
		return "", false
	}
	l.active = i
	return l.Enter()
}

// Dismiss empties the list.
func (l *List) Dismiss() { l.Set(nil) }

// Lines renders the entries as "TICKER - Name", the active one marked with '>'.
func (l *List) Lines() []string {
	out := make([]string, len(l.items))
	for i, s := range l.items {
		mark := " "
		if i == l.active {
			mark = ">"
		}
		out[i] = fmt.Sprintf("%s %s - %s", mark, s.Ticker, s.Name)
	}
	return out
}
