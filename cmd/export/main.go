package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/rule-search/internal/config"
	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/pkg/logger"
)

func main() {
	// --- Argument Parsing ---
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	ticker := flag.String("ticker", "", "Ticker to copy (defaults to the configured ticker)")
	startStr := flag.String("start", "", "First date to copy (YYYY-MM-DD)")
	endStr := flag.String("end", "", "Last date to copy (YYYY-MM-DD)")
	importMode := flag.Bool("import", false, "Import <csv_dir>/<TICKER>.csv into the database instead of exporting")
	flag.Parse()

	// --- Config and Logger Setup ---
	cfg, err := config.LoadConfig(*configPath, config.WithTicker(*ticker))
	if err != nil {
		logger.Fatalf("Failed to load configuration to get DB settings: %v", err)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)
	*ticker = cfg.Ticker
	dr, err := parseRange(*startStr, *endStr)
	if err != nil {
		logger.Fatalf("Invalid date range: %v", err)
	}

	// --- Database Connection ---
	ctx := context.Background()
	if err := datastore.Migrate(cfg.Database.URL("pgx5")); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	dbpool, err := pgxpool.New(ctx, cfg.Database.URL("postgres"))
	if err != nil {
		logger.Fatalf("Unable to connect to database: %v", err)
	}
	defer dbpool.Close()
	repo := datastore.NewPostgresRepository(dbpool)
	csvProvider := datastore.NewCSVProvider(cfg.Data.CSVDir)

	if *importMode {
		n, err := importPrices(ctx, csvProvider, repo, *ticker, dr)
		if err != nil {
			logger.Fatalf("Import failed: %v", err)
		}
		logger.Infof("Successfully imported %d rows for %s.", n, *ticker)
		return
	}

	// --- Query and Write Data ---
	data, err := repo.FetchPrices(ctx, *ticker, dr)
	if err != nil {
		logger.Fatalf("Failed to fetch prices: %v", err)
	}
	if err := datastore.WritePricesCSV(os.Stdout, data); err != nil {
		logger.Fatalf("Failed to write CSV: %v", err)
	}
	logger.Infof("Successfully exported %d rows.", data.Close.Len())
}

// priceSaver stores price histories.
type priceSaver interface {
	SavePrices(ctx context.Context, data *datastore.PriceData) (int64, error)
}

func importPrices(ctx context.Context, src datastore.PriceProvider, dst priceSaver, ticker string, dr datastore.DateRange) (int64, error) {
	data, err := src.FetchPrices(ctx, ticker, dr)
	if err != nil {
		return 0, err
	}
	return dst.SavePrices(ctx, data)
}

func parseRange(start, end string) (datastore.DateRange, error) {
	var dr datastore.DateRange
	var err error
	if start != "" {
		if dr.From, err = time.Parse(time.DateOnly, start); err != nil {
			return dr, err
		}
	}
	if end != "" {
		if dr.To, err = time.Parse(time.DateOnly, end); err != nil {
			return dr, err
		}
	}
	return dr, nil
}
