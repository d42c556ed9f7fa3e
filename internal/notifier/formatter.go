package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockTracker/internal/model"
)

// FormatDigest formats the day's movers into a Telegram message.
func FormatDigest(top *model.TopStocks, day time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>StockTracker daily digest</b> | %s\n", day.Format("2006-01-02")))

	section := func(title string, list []model.Stock, line func(model.Stock) string) {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", title))
		if len(list) == 0 {
			b.WriteString("  none\n")
			return
		}
		for i, s := range list {
			b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, line(s)))
		}
	}
	change := func(s model.Stock) string {
		return fmt.Sprintf("%s %.2f (%+.2f%%)", html.EscapeString(s.Ticker), s.DayClose, s.TodaysChangePerc)
	}
	section("📈 Top gainers", top.Gainers, change)
	section("📉 Top losers", top.Losers, change)
	section("🔥 Most traded", top.TopTraded, func(s model.Stock) string {
		return fmt.Sprintf("%s %s shares", html.EscapeString(s.Ticker), humanize.Comma(int64(s.Volume)))
	})
	return b.String()
}

// FormatStock formats the snapshot of one stock.
func FormatStock(s *model.Stock) string {
	var b strings.Builder
	title := html.EscapeString(s.Ticker)
	if s.Name != "" {
		title = fmt.Sprintf("%s (%s)", html.EscapeString(s.Name), title)
	}
	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", title))
	if s.DayClose == 0 {
		b.WriteString("No data collected yet.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Close: %.2f (%+.2f, %+.2f%%)\n", s.DayClose, s.TodaysChange, s.TodaysChangePerc))
	b.WriteString(fmt.Sprintf("Open %.2f | High %.2f | Low %.2f\n", s.DayOpen, s.DayHigh, s.DayLow))
	b.WriteString(fmt.Sprintf("Volume: %s\n", humanize.Comma(int64(s.Volume))))
	b.WriteString(fmt.Sprintf("DMA 30/50/200: %.2f / %.2f / %.2f\n", s.DMA30, s.DMA50, s.DMA200))
	b.WriteString(fmt.Sprintf("vs 200-DMA: %+.2f%%\n", s.DMA200PercDiff))
	b.WriteString(fmt.Sprintf("52w range: %.2f - %.2f\n", s.Low52w, s.High52w))
	if !s.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", s.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// HelpText lists the chat commands.
const HelpText = "Commands:\n• /top - today's movers\n• /stock TICKER - stock snapshot\n• /refresh - refresh all tickers"
