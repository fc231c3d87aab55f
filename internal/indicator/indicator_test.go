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

import (
	"math"
	"testing"
)

const float64EqualityThreshold = 1e-9

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= float64EqualityThreshold
}

func assertSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", name, len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

var nan = math.NaN()

func TestMovingAverages(t *testing.T) {
	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"SMA window 2", SMA([]float64{1, 2, 3, 4}, 2), []float64{nan, 1.5, 2.5, 3.5}},
		{"SMA window clamped", SMA([]float64{1, 2}, 0), []float64{1, 2}},
		{"EMA span 3", EMA([]float64{1, 2, 3}, 3), []float64{1, 1.5, 2.25}},
		{"RollingMean skips NaN windows", RollingMean([]float64{nan, 2, 4, 6}, 2), []float64{nan, nan, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.name, tt.got, tt.want)
		})
	}
}

func TestMACD(t *testing.T) {
	x := []float64{10, 11, 12, 11, 13, 14, 12}
	macd, sig := MACD(x, 2, 4, 2)
	fast, slow := EMA(x, 2), EMA(x, 4)
	for i := range x {
		if !almostEqual(macd[i], fast[i]-slow[i]) {
			t.Errorf("macd[%d] = %v, want %v", i, macd[i], fast[i]-slow[i])
		}
	}
	assertSeries(t, "signal", sig, EMA(macd, 2))
}

func TestOscillators(t *testing.T) {
	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"ROC", ROC([]float64{10, 11, 12.1}, 1), []float64{nan, 10, 10}},
		{"RSI", RSI([]float64{1, 2, 3, 2}, 2), []float64{nan, 100, 100, 100 - 100/1.75}},
		{"StochasticK", StochasticK([]float64{2, 1, 3, 2}), []float64{nan, 0, 100, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.name, tt.got, tt.want)
		})
	}
}

func TestVolatility(t *testing.T) {
	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"RollingStd", RollingStd([]float64{1, 2, 3, 5}, 2), []float64{nan, math.Sqrt2 / 2, math.Sqrt2 / 2, math.Sqrt2}},
		{"RollingStd single window", RollingStd([]float64{1, 2}, 1), []float64{nan, nan}},
		{"RollingMax", RollingMax([]float64{1, 3, 2, 5, 4}, 2), []float64{nan, 3, 3, 5, 5}},
		{"ATR", ATR([]float64{1, 2, 4, 3}, 2), []float64{nan, 0.5, 1.25, 1.125}},
		{"LogReturns", LogReturns([]float64{1, math.E, 1}), []float64{1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.name, tt.got, tt.want)
		})
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(mean, 5) || !almostEqual(std, math.Sqrt(32.0/7)) {
		t.Errorf("MeanStd = (%v, %v)", mean, std)
	}
	if _, std := MeanStd([]float64{3}); !math.IsNaN(std) {
		t.Errorf("single value std = %v, want NaN", std)
	}
	if LogReturns([]float64{1}) != nil {
		t.Error("LogReturns of one price should be nil")
	}
}
