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

package indicator

import "math"

// RollingStd returns the sample standard deviation over window observations.
// A window of one is undefined and yields NaN throughout.
func RollingStd(x []float64, window int) []float64 {
	out := nanSlice(len(x))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(x); i++ {
		_, sd := MeanStd(x[i-window+1 : i+1])
		out[i] = sd
	}
	return out
}

// RollingMax returns the highest value over window observations.
func RollingMax(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := nanSlice(len(x))
	for i := window - 1; i < len(x); i++ {
		m := math.Inf(-1)
		for _, v := range x[i-window+1 : i+1] {
			m = math.Max(m, v)
		}
		out[i] = m
	}
	return out
}

// ATR returns the average true range from closing prices only. The true
// range is the absolute close-to-close change (zero on the first day),
// smoothed with alpha 1/window and defined from index window-1.
func ATR(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	tr := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		tr[i] = math.Abs(x[i] - x[i-1])
	}
	return ewm(tr, 1/float64(window), window)
}

// LogReturns returns ln(x[i]/x[i-1]) for every consecutive pair; the result
// has one element fewer than x.
func LogReturns(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		out[i-1] = math.Log(x[i] / x[i-1])
	}
	return out
}

// MeanStd returns the mean and sample standard deviation of x. The standard
// deviation is NaN for fewer than two values.
func MeanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	if len(x) < 2 {
		return mean, math.NaN()
	}
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(x)-1))
}
