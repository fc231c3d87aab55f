// Package main ranks tickers by company metadata such as price to book.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/your-org/rule-search/internal/config"
	"github.com/your-org/rule-search/internal/csvwriter"
	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/internal/picker"
	"github.com/your-org/rule-search/internal/source"
	"github.com/your-org/rule-search/pkg/logger"
)

func main() {
	// --- Configuration ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	tickers := flag.String("tickers", "", "Comma separated tickers to rank (defaults to picker.tickers, then every ticker of the data source)")
	out := flag.String("out", "", "CSV file for the ranking (defaults to output.picks_csv)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, withPickerFlags(*tickers, *out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	l := logger.NewLogger(cfg.LogLevel)
	logger.SetGlobal(l)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l.Zap()); err != nil {
		logger.Fatalf("Stock picking failed: %v", err)
	}
}

// withPickerFlags applies the command line ticker list and output path.
func withPickerFlags(tickers, out string) config.Override {
	return func(c *config.Config) {
		if list := splitTickers(tickers); len(list) > 0 {
			c.Picker.Tickers = list
		}
		if out != "" {
			c.Output.PicksCSV = out
		}
	}
}

func splitTickers(s string) []string {
	var list []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			list = append(list, t)
		}
	}
	return list
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	p, err := picker.New(cfg.Picker.Metric)
	if err != nil {
		return err
	}
	provider, release, err := source.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	tickers, err := source.Tickers(ctx, provider, cfg.Picker.Tickers)
	if err != nil {
		return err
	}
	from, to, err := cfg.Data.Range()
	if err != nil {
		return err
	}
	picks, err := picker.Rank(ctx, provider, p, tickers, datastore.DateRange{From: from, To: to}, cfg.Picker.Workers, log)
	if err != nil {
		return err
	}
	if top := cfg.Picker.Top; top > 0 && len(picks) > top {
		picks = picks[:top]
	}

	for i, pick := range picks {
		log.Info("Pick",
			zap.Int("rank", i+1),
			zap.String("ticker", pick.Ticker),
			zap.Float64(p.Name(), pick.Score))
	}
	if cfg.Output.PicksCSV != "" {
		if err := csvwriter.WritePicks(cfg.Output.PicksCSV, p.Name(), picks, log); err != nil {
			return fmt.Errorf("write picks: %w", err)
		}
	}
	return nil
}
