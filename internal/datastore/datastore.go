// Package datastore loads and stores daily closing prices.
package datastore

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/your-org/rule-search/internal/series"
)

var (
	// ErrTickerNotFound is returned when a provider has no data for a ticker.
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrNoPrices is returned when a ticker has no prices in the requested range.
	ErrNoPrices = errors.New("no prices in range")
)

// DateRange is an inclusive range of dates. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Action is a corporate action such as a dividend or a split.
type Action struct {
	Time  time.Time
	Value float64
}

// InfoPriceToBook is the Info key of the price to book ratio.
const InfoPriceToBook = "price_to_book"

// PriceData is the price history of one ticker.
type PriceData struct {
	Ticker    string
	Close     *series.PriceSeries
	Dividends []Action
	Splits    []Action
	// Info holds company metadata keyed by field name, e.g. InfoPriceToBook.
	// It is nil when the provider has none.
	Info map[string]float64
}

// withInfo returns data with a copy of info attached.
func (d *PriceData) withInfo(info map[string]float64) *PriceData {
	if len(info) > 0 {
		d.Info = maps.Clone(info)
	}
	return d
}

// PriceProvider fetches the closing prices of a ticker.
type PriceProvider interface {
	FetchPrices(ctx context.Context, ticker string, r DateRange) (*PriceData, error)
}

// priceRow is the row form shared by the providers.
type priceRow struct {
	date     time.Time
	close    float64
	dividend float64
	split    float64
}

// assemble builds PriceData from date-ordered rows.
func assemble(ticker string, rows []priceRow) (*PriceData, error) {
	if len(rows) == 0 {
		return nil, ErrNoPrices
	}
	times := make([]time.Time, len(rows))
	closes := make([]float64, len(rows))
	data := &PriceData{Ticker: ticker}
	for i, r := range rows {
		times[i] = r.date
		closes[i] = r.close
		if r.dividend != 0 {
			data.Dividends = append(data.Dividends, Action{Time: r.date, Value: r.dividend})
		}
		if r.split != 0 && r.split != 1 {
			data.Splits = append(data.Splits, Action{Time: r.date, Value: r.split})
		}
	}
	s, err := series.NewPriceSeries(times, closes)
	if err != nil {
		return nil, err
	}
	data.Close = s
	return data, nil
}

// rowsOf flattens data back into rows.
func rowsOf(data *PriceData) []priceRow {
	n := data.Close.Len()
	rows := make([]priceRow, n)
	for i := 0; i < n; i++ {
		rows[i] = priceRow{date: data.Close.Time(i), close: data.Close.Price(i)}
	}
	for _, a := range data.Dividends {
		if i := data.Close.IndexOf(a.Time); i >= 0 {
			rows[i].dividend = a.Value
		}
	}
	for _, a := range data.Splits {
		if i := data.Close.IndexOf(a.Time); i >= 0 {
			rows[i].split = a.Value
		}
	}
	return rows
}
