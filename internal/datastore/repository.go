package datastore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is an interface that abstracts the pgxpool.Pool for testability.
type Pool interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	minDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

const (
	tickerExistsQuery = `SELECT EXISTS (SELECT 1 FROM tickers WHERE symbol = $1);`
	fetchPricesQuery  = `
        SELECT date, close, dividend, split
        FROM daily_prices
        WHERE symbol = $1 AND date BETWEEN $2 AND $3
        ORDER BY date ASC;
    `
	insertTickerQuery = `INSERT INTO tickers (symbol) VALUES ($1) ON CONFLICT (symbol) DO NOTHING;`
	deletePricesQuery = `DELETE FROM daily_prices WHERE symbol = $1 AND date BETWEEN $2 AND $3;`
	listTickersQuery  = `SELECT symbol FROM tickers ORDER BY symbol ASC;`
	fetchInfoQuery    = `SELECT key, value FROM ticker_info WHERE symbol = $1;`
	upsertInfoQuery   = `
        INSERT INTO ticker_info (symbol, key, value) VALUES ($1, $2, $3)
        ON CONFLICT (symbol, key) DO UPDATE SET value = EXCLUDED.value;
    `
)

var priceColumns = []string{"symbol", "date", "close", "dividend", "split"}

// PostgresRepository stores daily prices in PostgreSQL.
type PostgresRepository struct {
	db Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FetchPrices implements PriceProvider.
func (r *PostgresRepository) FetchPrices(ctx context.Context, ticker string, dr DateRange) (*PriceData, error) {
	symbol := strings.ToUpper(ticker)

	var exists bool
	if err := r.db.QueryRow(ctx, tickerExistsQuery, symbol).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up ticker %s: %w", symbol, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	from, to := bounds(dr)
	rows, err := r.db.Query(ctx, fetchPricesQuery, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer rows.Close()

	var result []priceRow
	for rows.Next() {
		var p priceRow
		if err := rows.Scan(&p.date, &p.close, &p.dividend, &p.split); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	data, err := assemble(symbol, result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	if data.Info, err = r.fetchInfo(ctx, symbol); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *PostgresRepository) fetchInfo(ctx context.Context, symbol string) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, fetchInfoQuery, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch info for %s: %w", symbol, err)
	}
	defer rows.Close()

	var info map[string]float64
	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if info == nil {
			info = make(map[string]float64)
		}
		info[key] = value
	}
	return info, rows.Err()
}

// SavePrices registers the ticker, replaces its prices over the dates
// covered by data and upserts its Info. It returns the number of price rows
// written.
func (r *PostgresRepository) SavePrices(ctx context.Context, data *PriceData) (int64, error) {
	symbol := strings.ToUpper(data.Ticker)
	if _, err := r.db.Exec(ctx, insertTickerQuery, symbol); err != nil {
		return 0, fmt.Errorf("failed to insert ticker %s: %w", symbol, err)
	}

	first, _ := data.Close.First()
	last, _ := data.Close.Last()
	if _, err := r.db.Exec(ctx, deletePricesQuery, symbol, first, last); err != nil {
		return 0, fmt.Errorf("failed to clear prices for %s: %w", symbol, err)
	}

	rows := rowsOf(data)
	src := make([][]any, len(rows))
	for i, p := range rows {
		src[i] = []any{symbol, p.date, p.close, p.dividend, p.split}
	}
	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"daily_prices"}, priceColumns, pgx.CopyFromRows(src))
	if err != nil {
		return 0, fmt.Errorf("failed to copy prices for %s: %w", symbol, err)
	}

	keys := make([]string, 0, len(data.Info))
	for k := range data.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := r.db.Exec(ctx, upsertInfoQuery, symbol, k, data.Info[k]); err != nil {
			return 0, fmt.Errorf("failed to save %s for %s: %w", k, symbol, err)
		}
	}
	return n, nil
}

// Tickers lists the stored ticker symbols.
func (r *PostgresRepository) Tickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, listTickersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func bounds(dr DateRange) (time.Time, time.Time) {
	from, to := dr.From, dr.To
	if from.IsZero() {
		from = minDate
	}
	if to.IsZero() {
		to = maxDate
	}
	return from, to
}
