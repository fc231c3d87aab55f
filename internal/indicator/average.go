// Copyright (c) 2024 OBI-Scalp-Bot
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package indicator computes technical indicators over closing prices.
// Each function returns a slice aligned with its input; values that are not
// yet defined during a warm-up period are NaN.
package indicator

import "math"

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA returns the simple moving average over window observations.
func SMA(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := nanSlice(len(x))
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= window {
			sum -= x[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA returns the recursive exponential moving average with smoothing
// 2/(span+1), seeded with the first observation.
func EMA(x []float64, span int) []float64 {
	if span < 1 {
		span = 1
	}
	return ewm(x, 2/(float64(span)+1), 1)
}

// ewm is the recursive exponentially weighted mean with weight alpha on the
// newest observation. NaN inputs are skipped and outputs stay NaN until
// minPeriods valid observations have been seen.
func ewm(x []float64, alpha float64, minPeriods int) []float64 {
	out := nanSlice(len(x))
	mean := math.NaN()
	seen := 0
	for i, v := range x {
		if math.IsNaN(v) {
			if seen >= minPeriods {
				out[i] = mean
			}
			continue
		}
		seen++
		if seen == 1 {
			mean = v
		} else {
			mean = alpha*v + (1-alpha)*mean
		}
		if seen >= minPeriods {
			out[i] = mean
		}
	}
	return out
}

// MACD returns the difference between the fast and slow EMA and its EMA
// signal line.
func MACD(x []float64, fast, slow, signal int) (macd, signalLine []float64) {
	f := EMA(x, fast)
	s := EMA(x, slow)
	macd = make([]float64, len(x))
	for i := range x {
		macd[i] = f[i] - s[i]
	}
	return macd, EMA(macd, signal)
}
