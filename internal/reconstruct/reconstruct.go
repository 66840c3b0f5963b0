// Package reconstruct collapses the tail of a symbol's ring buffer into
// a per-second OHLC series. The exchange emits several revisions of the
// same unconfirmed kline within a second; this is the component that
// folds those revisions into one OHLC row per calendar second while
// still treating window membership by wall-clock distance, not row
// count.
package reconstruct

import (
	"errors"
	"time"

	"github.com/cptdom/whiplash/internal/model"
	"github.com/cptdom/whiplash/internal/ring"
)

// ErrWindowTooLarge is returned when seconds exceeds the 60-second
// per-minute buffer the ring is sized for.
var ErrWindowTooLarge = errors.New("reconstruct: requested window exceeds 60 seconds")

// Series is a per-second OHLC sequence, oldest first. Highs, Lows, and
// Closes are parallel arrays of equal length.
type Series struct {
	Highs  []float64
	Lows   []float64
	Closes []float64
}

// Len reports the number of OHLC rows in the series.
func (s Series) Len() int { return len(s.Closes) }

// Window walks buf from newest to oldest and folds it into a Series
// covering the last `seconds` of wall-clock time.
//
// buf is only read (PeekBack, ReverseEach, At); Window never mutates it.
func Window(buf *ring.Buffer, seconds int) (Series, error) {
	if seconds > 60 {
		return Series{}, ErrWindowTooLarge
	}
	if buf.Len() == 0 {
		return Series{}, nil
	}

	latest, _ := buf.PeekBack()
	latestTs := latest.Ts
	stopTs := latestTs.Add(-time.Duration(seconds) * time.Second)

	var keyOrder []int
	highs := make(map[int]float64)
	lows := make(map[int]float64)
	closes := make(map[int]float64)

	buf.ReverseEach(func(i int, cur model.Snapshot) bool {
		second := cur.Ts.Second()

		if len(keyOrder) == 0 || keyOrder[len(keyOrder)-1] != second {
			keyOrder = append(keyOrder, second)
		}

		if _, ok := closes[second]; !ok {
			closes[second] = cur.ClosePrice
		}
		if h, ok := highs[second]; !ok || cur.ClosePrice > h {
			highs[second] = cur.ClosePrice
		}
		if l, ok := lows[second]; !ok || cur.ClosePrice < l {
			lows[second] = cur.ClosePrice
		}

		if i+1 >= buf.Len() {
			return false
		}
		prev := buf.At(i + 1)
		if !prev.Ts.After(stopTs) || (prev.Ts.Equal(latestTs) && i != 0) {
			return false
		}
		return true
	})

	for i, j := 0, len(keyOrder)-1; i < j; i, j = i+1, j-1 {
		keyOrder[i], keyOrder[j] = keyOrder[j], keyOrder[i]
	}

	out := Series{
		Highs:  make([]float64, len(keyOrder)),
		Lows:   make([]float64, len(keyOrder)),
		Closes: make([]float64, len(keyOrder)),
	}
	for i, key := range keyOrder {
		out.Highs[i] = highs[key]
		out.Lows[i] = lows[key]
		out.Closes[i] = closes[key]
	}
	return out, nil
}
