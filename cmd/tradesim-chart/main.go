// tradesim-chart exports one symbol's price history as a PNG chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tradesim/internal/api"
	"tradesim/internal/config"
	"tradesim/internal/dashboard"
	"tradesim/internal/session"
	"tradesim/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	symbol := flag.String("symbol", "", "stock symbol to chart (required)")
	days := flag.Int("days", 0, "history window in days (default: configured sync window)")
	out := flag.String("out", "", "output PNG path (default: <symbol>.png)")
	width := flag.Int("width", 900, "chart width in pixels")
	height := flag.Int("height", 400, "chart height in pixels")
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "usage: tradesim-chart -symbol DDOG [-days 90] [-out ddog.png]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	if *days <= 0 {
		*days = cfg.Sync.HistoryDays
	}

	logger := util.NewLogger(os.Stderr, cfg.Logging.Level, "text")

	st := session.NewStore()
	journal := session.NewActivityLog()
	client := api.NewClient(cfg.Server.BaseURL, cfg.User.ID, st, journal, logger)

	points, err := client.StockHistory(context.Background(), *symbol, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetching history: %v\n", err)
		os.Exit(1)
	}

	png, err := dashboard.RenderHistoryPNG(*symbol, points, *width, *height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rendering chart: %v\n", err)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = *symbol + ".png"
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", path, err)
		os.Exit(1)
	}

	logger.Info("chart written", "symbol", *symbol, "points", len(points), "path", path)
}
