// Command stockctl queries a running StockTracker server from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"StockTracker/internal/chart"
	"StockTracker/internal/chartdata"
	"StockTracker/internal/client"
	"StockTracker/internal/model"
	"StockTracker/internal/render"
	"StockTracker/internal/search"
)

const usage = `usage: stockctl [-server URL] <command> [flags]

commands:
  search <text>       ticker autocomplete
  top                 today's gainers, losers and most traded
  chart <ticker>      chart readout for a timeframe, optionally as PNG
  snapshot <ticker>   download the server-rendered PNG chart`

func main() {
	log.SetFlags(0)
	server := flag.String("server", envOr("STOCKTRACKER_URL", "http://localhost:8080"), "server base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := run(ctx, client.New(*server), os.Stdout, flag.Args()); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "search":
		return runSearch(ctx, c, out, args)
	case "top":
		return runTop(ctx, c, out, args)
	case "chart":
		return runChart(ctx, c, out, args)
	case "snapshot":
		return runSnapshot(ctx, c, out, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// parse parses flags that may follow one positional argument.
func parse(fs *flag.FlagSet, args []string, what string) (string, error) {
	fs.SetOutput(io.Discard)
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", fmt.Errorf("%s: missing %s", fs.Name(), what)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return args[0], nil
}

func newTable(out io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	return t
}

func runSearch(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	pick := fs.Int("pick", 0, "print the page of the n-th suggestion (1-based)")
	text, err := parse(fs, args, "search text")
	if err != nil {
		return err
	}

	list := search.NewList(search.NewSuggester(c).Suggest(ctx, text))
	if *pick > 0 {
		target, ok := list.Click(*pick - 1)
		if !ok {
			return fmt.Errorf("search: no suggestion %d for %q", *pick, text)
		}
		fmt.Fprintln(out, target)
		return nil
	}
	if list.Len() == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	t := newTable(out, "", table.Row{"#", "Ticker", "Name", "Page"})
	for i, s := range list.Items() {
		t.AppendRow(table.Row{i + 1, s.Ticker, s.Name, search.TargetURL(s.Ticker)})
	}
	t.Render()
	return nil
}

func runTop(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", 10, "stocks per list")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("top: %w", err)
	}

	top, err := c.Top(ctx, *limit)
	if err != nil {
		return err
	}
	for _, section := range []struct {
		title string
		list  []model.Stock
	}{
		{"Top gainers", top.Gainers},
		{"Top losers", top.Losers},
		{"Most traded", top.TopTraded},
	} {
		t := newTable(out, section.title, table.Row{"Ticker", "Name", "Close", "Change %", "Volume"})
		for _, s := range section.list {
			t.AppendRow(table.Row{
				s.Ticker, s.Name,
				chart.FormatPrice(s.DayClose),
				chart.ChangeBadge(s.TodaysChangePerc).Text,
				chart.FormatVolume(s.Volume),
			})
		}
		t.Render()
	}
	return nil
}

func runChart(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	timeframe := fs.String("timeframe", chartdata.DefaultTimeframe, "timeframe ("+strings.Join(chartdata.Names(), ", ")+")")
	hover := fs.Int("hover", -1, "index to hover, negative counts from the end; -1 is the last point")
	hide := fs.String("hide", "", "comma separated moving averages to hide, e.g. 50-EMA,200-EMA")
	tooltip := fs.Bool("tooltip", false, "print the tooltip for the hovered point")
	pngPath := fs.String("png", "", "also paint the chart to this PNG file")
	ticker, err := parse(fs, args, "ticker")
	if err != nil {
		return err
	}

	view := &textView{}
	w := chart.NewWidget(strings.ToUpper(ticker), c, view, chart.WidgetOptions{
		Area:           chart.Area{Left: 0, Top: 0, Right: render.DefaultWidth, Bottom: render.DefaultHeight},
		TooltipEnabled: *tooltip,
	})
	if err := w.ResetChart(ctx, *timeframe, nil); err != nil {
		return err
	}
	if *hide != "" {
		for _, label := range strings.Split(*hide, ",") {
			if err := w.ToggleSeries(strings.TrimSpace(label)); err != nil {
				return err
			}
		}
	}
	if p := w.Series(); p.Len() > 0 {
		idx := *hover
		if idx < 0 {
			idx += p.Len()
		}
		w.Hover(idx)
	}
	printChart(out, strings.ToUpper(ticker), view)

	if *pngPath == "" {
		return nil
	}
	ch := w.Chart()
	if ch == nil {
		return errors.New("chart: no data to paint")
	}
	f, err := os.Create(*pngPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", *pngPath, err)
	}
	defer f.Close()
	idx := -1
	view.mu.Lock()
	if view.frame.Overlay != nil {
		idx = view.frame.Overlay.Index
	}
	view.mu.Unlock()
	if err := render.Snapshot(f, ch, render.SnapshotOptions{Hover: idx, Visible: w.Visibility()}); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *pngPath)
	return nil
}

func printChart(out io.Writer, ticker string, v *textView) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(out, "%s %s  %s\n", ticker, v.timeframe, v.badge.Text)
	if !v.visible {
		fmt.Fprintln(out, "data not available")
		return
	}
	t := newTable(out, "", table.Row{"Field", "Value"})
	r := v.readout
	for _, row := range [][2]string{
		{chart.DateLabel, r.Date},
		{chart.ClosePriceLabel, r.ClosePrice},
		{chart.EMA30Label, r.EMA30},
		{chart.EMA50Label, r.EMA50},
		{chart.EMA200Label, r.EMA200},
		{chart.VolumeLabel, r.Volume},
	} {
		t.AppendRow(table.Row{row[0], row[1]})
	}
	t.Render()

	if len(v.legend) > 0 {
		parts := make([]string, len(v.legend))
		for i, item := range v.legend {
			parts[i] = item.Label
			if item.Hidden {
				parts[i] = "~" + item.Label + "~"
			}
		}
		fmt.Fprintf(out, "legend: %s\n", strings.Join(parts, "  "))
	}
	for _, line := range v.frame.Tooltip {
		fmt.Fprintf(out, "tooltip: %s\n", line)
	}
}

func runSnapshot(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	timeframe := fs.String("timeframe", chartdata.DefaultTimeframe, "timeframe")
	hover := fs.Int("hover", -1, "index to hover; negative draws no overlay")
	output := fs.String("o", "", "output file (default <TICKER>-<timeframe>.png)")
	ticker, err := parse(fs, args, "ticker")
	if err != nil {
		return err
	}
	ticker = strings.ToUpper(ticker)
	if *output == "" {
		*output = fmt.Sprintf("%s-%s.png", ticker, *timeframe)
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create %s: %w", *output, err)
	}
	if err := c.Snapshot(ctx, f, ticker, *timeframe, *hover); err != nil {
		f.Close()
		os.Remove(*output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *output, err)
	}
	fmt.Fprintf(out, "wrote %s\n", *output)
	return nil
}
