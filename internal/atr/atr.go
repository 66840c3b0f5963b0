// Package atr computes true range and an EMA-seeded, Wilder-smoothed
// Average True Range, and evaluates the volatility-gate condition used
// to gate readiness. The seeding convention (EMA of true range up to
// the period, classic Wilder smoothing thereafter) is a deliberately
// preserved hybrid, not a textbook ATR variant.
package atr

import (
	"math"

	"github.com/cptdom/whiplash/internal/reconstruct"
	"github.com/cptdom/whiplash/internal/ring"
)

// TrueRange computes the true range series from OHLC arrays of equal
// length. tr[0] is always 0; for i >= 1,
// tr[i] = max(high[i]-low[i], |high[i]-close[i-1]|, |low[i]-close[i-1]|).
func TrueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ema computes an EMA of in with period p > 1. The first p-1 outputs are
// 0; out[p-1] seeds with the simple mean of the first p inputs; later
// outputs follow the standard recurrence with k = 2/(p+1).
func ema(in []float64, p int) []float64 {
	out := make([]float64, len(in))
	if p <= 1 || len(in) < p {
		return out
	}
	k := 2.0 / (float64(p) + 1.0)

	var sum float64
	for i := 0; i < p; i++ {
		sum += in[i]
	}
	prev := sum / float64(p)
	out[p-1] = prev

	for i := p; i < len(in); i++ {
		prev = (in[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

// EMA computes the ATR series: if p < 1, returns a zeroed
// series of len(closes); if p == 1, returns the true-range series
// unchanged; otherwise an EMA of the true range seeds index p, and
// Wilder smoothing (atr[i] = (atr[i-1]*(p-1)+tr[i])/p) carries the
// series forward from index p+1.
func EMA(highs, lows, closes []float64, p int) []float64 {
	out := make([]float64, len(closes))
	if p < 1 {
		return out
	}
	if p == 1 {
		return TrueRange(highs, lows, closes)
	}

	tr := TrueRange(highs, lows, closes)
	emaTR := ema(tr, p)
	if p >= len(out) {
		return out
	}

	prev := emaTR[p]
	out[p] = prev
	pf := float64(p)
	for i := p + 1; i < len(closes); i++ {
		prev = (prev*(pf-1) + tr[i]) / pf
		out[i] = prev
	}
	return out
}

// Result is the outcome of CheckCondition.
type Result struct {
	LimitPassed bool
	ATR         float64
}

// CheckCondition reconstructs the OHLC series for the window, checks
// coverage against atrMinCandlesPercent, computes the EMA-variant ATR
// over the effective window, and compares it against atrThreshold as a
// percent of the latest close. buf is read only, never mutated.
func CheckCondition(buf *ring.Buffer, seconds int, atrThreshold, atrMinCandlesPercent float64) (Result, error) {
	series, err := reconstruct.Window(buf, seconds)
	if err != nil {
		return Result{}, err
	}

	n := series.Len()
	required := int(math.Ceil(float64(seconds) * atrMinCandlesPercent))
	if n < required {
		return Result{}, nil
	}

	effective := seconds
	if n < effective {
		effective = n
	}

	atrSeries := EMA(series.Highs, series.Lows, series.Closes, effective)
	if len(atrSeries) == 0 {
		return Result{}, nil
	}
	atrValue := atrSeries[len(atrSeries)-1]
	if atrValue == 0 {
		return Result{}, nil
	}

	closeLast := series.Closes[n-1]
	passed := atrValue/closeLast > atrThreshold/100
	return Result{LimitPassed: passed, ATR: atrValue}, nil
}
