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

// ROC returns the percentage rate of change against the value window
// observations earlier.
func ROC(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := nanSlice(len(x))
	for i := window; i < len(x); i++ {
		out[i] = (x[i] - x[i-window]) / x[i-window] * 100
	}
	return out
}

// RSI returns Wilder's relative strength index. Average gains and losses are
// smoothed with alpha 1/window and defined from index window-1. A window
// without losses yields 100.
func RSI(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	n := len(x)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := x[i] - x[i-1]
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}

	alpha := 1 / float64(window)
	avgGain := ewm(gains, alpha, window)
	avgLoss := ewm(losses, alpha, window)

	out := nanSlice(n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out
}

// StochasticK returns the %K line against the running lowest and highest
// close since the start of the series. It is NaN while both are equal.
func StochasticK(x []float64) []float64 {
	out := nanSlice(len(x))
	if len(x) == 0 {
		return out
	}
	lo, hi := x[0], x[0]
	for i, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		if hi > lo {
			out[i] = (v - lo) / (hi - lo) * 100
		}
	}
	return out
}

// RollingMean is SMA that tolerates NaN inputs: a window containing NaN is NaN.
func RollingMean(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := nanSlice(len(x))
	for i := window - 1; i < len(x); i++ {
		sum := 0.0
		for _, v := range x[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}
