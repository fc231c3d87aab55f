package datastore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/rule-search/pkg/logger"
)

var (
	csvHeader  = []string{"date", "close", "dividend", "split"}
	infoHeader = []string{"key", "value"}
)

const infoSuffix = ".info.csv"

// CSVProvider reads prices from <Dir>/<TICKER>.csv. The file has a header row
// and the columns date,close with optional dividend and split columns.
// Company metadata is read from the optional <Dir>/<TICKER>.info.csv with
// the columns key,value.
type CSVProvider struct {
	Dir string
}

// NewCSVProvider creates a CSVProvider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{Dir: dir}
}

// Path returns the file that holds ticker.
func (p *CSVProvider) Path(ticker string) string {
	return filepath.Join(p.Dir, strings.ToUpper(ticker)+".csv")
}

// InfoPath returns the metadata file of ticker.
func (p *CSVProvider) InfoPath(ticker string) string {
	return filepath.Join(p.Dir, strings.ToUpper(ticker)+infoSuffix)
}

// Tickers lists the tickers that have a price file in Dir.
func (p *CSVProvider) Tickers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.Dir, err)
	}
	var symbols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, infoSuffix) {
			continue
		}
		symbols = append(symbols, strings.ToUpper(strings.TrimSuffix(name, ".csv")))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// FetchPrices implements PriceProvider.
func (p *CSVProvider) FetchPrices(ctx context.Context, ticker string, r DateRange) (*PriceData, error) {
	file, err := os.Open(p.Path(ticker))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	rows, err := readPriceRows(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path(ticker), err)
	}
	var inRange []priceRow
	for _, row := range rows {
		if r.Contains(row.date) {
			inRange = append(inRange, row)
		}
	}
	data, err := assemble(strings.ToUpper(ticker), inRange)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	if data.Info, err = readInfoFile(p.InfoPath(ticker)); err != nil {
		return nil, err
	}
	logger.Debugf("Loaded %d prices for %s from %s", data.Close.Len(), data.Ticker, p.Path(ticker))
	return data, nil
}

func readPriceRows(ctx context.Context, src io.Reader) ([]priceRow, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []priceRow
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if len(record) < 2 {
			logger.Warnf("Skipping line %d: expected at least 2 columns, got %d", line, len(record))
			continue
		}
		row, err := parseRow(record)
		if err != nil {
			logger.Warnf("Skipping line %d: %v", line, err)
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	return rows, nil
}

// readInfoFile returns nil when path does not exist.
func readInfoFile(path string) (map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open info file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info := make(map[string]float64)
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			logger.Warnf("Skipping %s line %d: expected key,value", path, i+1)
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			logger.Warnf("Skipping %s line %d: %v", path, i+1, err)
			continue
		}
		info[strings.TrimSpace(record[0])] = v
	}
	if len(info) == 0 {
		return nil, nil
	}
	return info, nil
}

// WriteInfoCSV writes info sorted by key in the format CSVProvider reads.
func WriteInfoCSV(w io.Writer, info map[string]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(infoHeader); err != nil {
		return err
	}
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cw.Write([]string{k, strconv.FormatFloat(info[k], 'f', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseRow(record []string) (priceRow, error) {
	var row priceRow
	date, err := parseDate(record[0])
	if err != nil {
		return row, err
	}
	row.date = date
	if row.close, err = strconv.ParseFloat(strings.TrimSpace(record[1]), 64); err != nil {
		return row, fmt.Errorf("close: %w", err)
	}
	if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
		if row.dividend, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64); err != nil {
			return row, fmt.Errorf("dividend: %w", err)
		}
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		if row.split, err = strconv.ParseFloat(strings.TrimSpace(record[3]), 64); err != nil {
			return row, fmt.Errorf("split: %w", err)
		}
	}
	return row, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("could not parse date '%s' with any known format", s)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}

// WritePricesCSV writes data in the format CSVProvider reads.
func WritePricesCSV(w io.Writer, data *PriceData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rowsOf(data) {
		record := []string{
			row.date.Format(time.DateOnly),
			strconv.FormatFloat(row.close, 'f', -1, 64),
			strconv.FormatFloat(row.dividend, 'f', -1, 64),
			strconv.FormatFloat(row.split, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SavePrices writes data to the provider's directory, replacing any existing
// files. The info file is only written when data carries metadata.
func (p *CSVProvider) SavePrices(data *PriceData) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return err
	}
	if err := createCSV(p.Path(data.Ticker), func(w io.Writer) error { return WritePricesCSV(w, data) }); err != nil {
		return err
	}
	if len(data.Info) == 0 {
		return nil
	}
	return createCSV(p.InfoPath(data.Ticker), func(w io.Writer) error { return WriteInfoCSV(w, data.Info) })
}

func createCSV(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
