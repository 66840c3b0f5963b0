// Package volumedelta computes the short-window traded-volume delta,
// disambiguating kline revisions (which report cumulative bar volume
// and must be subtracted) from bar boundaries (where the new bar's
// cumulative value is itself the delta).
package volumedelta

import (
	"time"

	"github.com/cptdom/whiplash/internal/model"
	"github.com/cptdom/whiplash/internal/ring"
)

// Calc walks buf newest-to-oldest and sums the traded notional over the
// last `seconds` of wall-clock time. buf is read only, never mutated.
//
// The confirmed flag on the *previous* (next-older) snapshot, combined
// with the iteration index being nonzero, is the signal that the
// current snapshot opens a fresh bar rather than revising the one
// before it.
func Calc(buf *ring.Buffer, seconds int) float64 {
	if buf.Len() == 0 {
		return 0
	}

	latest, _ := buf.PeekBack()
	stopTs := latest.Ts.Add(-time.Duration(seconds) * time.Second)

	var total float64
	buf.ReverseEach(func(i int, cur model.Snapshot) bool {
		if i+1 >= buf.Len() {
			return false
		}
		prev := buf.At(i + 1)
		if !prev.Ts.After(stopTs) || (prev.Ts.Equal(latest.Ts) && i != 0) {
			return false
		}

		if prev.Confirmed && i != 0 {
			total += cur.Value
		} else {
			total += cur.Value - prev.Value
		}
		return true
	})

	return total
}
