// Package series holds the time-indexed price and signal data shared by
// trading rules, the reconciler and the simulators.
package series

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptySeries      = errors.New("price series is empty")
	ErrLengthMismatch   = errors.New("timestamps and prices differ in length")
	ErrNotIncreasing    = errors.New("timestamps must be strictly increasing")
	ErrNonPositivePrice = errors.New("prices must be finite and positive")
)

// PriceSeries is an immutable, strictly time-ordered sequence of closing prices.
type PriceSeries struct {
	times  []time.Time
	prices []float64
}

// NewPriceSeries validates and copies the given columns.
func NewPriceSeries(times []time.Time, prices []float64) (*PriceSeries, error) {
	if len(times) == 0 {
		return nil, ErrEmptySeries
	}
	if len(times) != len(prices) {
		return nil, fmt.Errorf("%w: %d timestamps, %d prices", ErrLengthMismatch, len(times), len(prices))
	}
	for i := range times {
		if i > 0 && !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: index %d (%s) is not after %s", ErrNotIncreasing, i, times[i].Format(time.DateOnly), times[i-1].Format(time.DateOnly))
		}
		p := prices[i]
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: index %d has %v", ErrNonPositivePrice, i, p)
		}
	}

	ts := make([]time.Time, len(times))
	copy(ts, times)
	ps := make([]float64, len(prices))
	copy(ps, prices)
	return &PriceSeries{times: ts, prices: ps}, nil
}

// Daily builds a series with one price per consecutive calendar day starting at start.
func Daily(start time.Time, prices []float64) (*PriceSeries, error) {
	times := make([]time.Time, len(prices))
	for i := range prices {
		times[i] = start.AddDate(0, 0, i)
	}
	return NewPriceSeries(times, prices)
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.prices) }

// Time returns the timestamp at index i.
func (s *PriceSeries) Time(i int) time.Time { return s.times[i] }

// Price returns the closing price at index i.
func (s *PriceSeries) Price(i int) float64 { return s.prices[i] }

// Prices returns a copy of the closing prices.
func (s *PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.prices))
	copy(out, s.prices)
	return out
}

// Times returns a copy of the timestamps.
func (s *PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// First returns the first timestamp and price.
func (s *PriceSeries) First() (time.Time, float64) { return s.times[0], s.prices[0] }

// Last returns the final timestamp and price.
func (s *PriceSeries) Last() (time.Time, float64) {
	n := len(s.prices) - 1
	return s.times[n], s.prices[n]
}

// IndexOf returns the index of t, or -1 when t is not part of the series.
func (s *PriceSeries) IndexOf(t time.Time) int {
	lo, hi := 0, len(s.times)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case s.times[mid].Equal(t):
			return mid
		case s.times[mid].Before(t):
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// Equal reports whether both series carry identical timestamps and prices.
func (s *PriceSeries) Equal(other *PriceSeries) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.prices) != len(other.prices) {
		return false
	}
	for i := range s.prices {
		if s.prices[i] != other.prices[i] || !s.times[i].Equal(other.times[i]) {
			return false
		}
	}
	return true
}
