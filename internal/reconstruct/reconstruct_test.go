package reconstruct

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cptdom/whiplash/internal/model"
	"github.com/cptdom/whiplash/internal/ring"
)

func pushAt(b *ring.Buffer, t0 time.Time, offsetMs int64, closePrice float64) {
	b.PushBack(model.Snapshot{
		Ts:         t0.Add(time.Duration(offsetMs) * time.Millisecond),
		ClosePrice: closePrice,
		Value:      closePrice,
	})
}

func TestWindowSingleSecond(t *testing.T) {
	b := ring.New()
	// T0 sits late in its second so the -650..-50 ms snapshots share one
	// calendar second; the -1050 ms snapshot lies on the window's edge.
	t0 := time.Date(2024, 1, 1, 0, 0, 1, 900_000_000, time.UTC)

	pushAt(b, t0, -1050, 51)
	pushAt(b, t0, -650, 52)
	pushAt(b, t0, -450, 53)
	pushAt(b, t0, -250, 59)
	pushAt(b, t0, -50, 55)

	series, err := Window(b, 1)
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	assert.Equal(t, 55.0, series.Closes[0])
	assert.Equal(t, 59.0, series.Highs[0])
	assert.Equal(t, 52.0, series.Lows[0])
}

func TestWindowBoundaryCrossing(t *testing.T) {
	b := ring.New()
	// Anchor so that the newest snapshot's second differs from the second
	// three snapshots back, crossing a calendar-second boundary.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pushAt(b, base, 0, 10)    // far outside window
	pushAt(b, base, 100, 20)  // outside window
	pushAt(b, base, 900, 53)  // older second
	pushAt(b, base, 1100, 52) // newer second
	pushAt(b, base, 1300, 59) // newer second
	pushAt(b, base, 1500, 55) // newer second (newest)

	series, err := Window(b, 1)
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, []float64{53, 55}, series.Closes)
	assert.Equal(t, []float64{53, 59}, series.Highs)
	assert.Equal(t, []float64{53, 52}, series.Lows)
}

func TestWindowTooLarge(t *testing.T) {
	b := ring.New()
	pushAt(b, time.Now(), 0, 1)

	_, err := Window(b, 60)
	assert.NoError(t, err)

	_, err = Window(b, 61)
	assert.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestWindowEmptyRing(t *testing.T) {
	b := ring.New()
	series, err := Window(b, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestWindowDoesNotMutateRing(t *testing.T) {
	b := ring.New()
	base := time.Now()
	for i := 0; i < 10; i++ {
		pushAt(b, base, int64(i)*100, float64(i))
	}
	before := b.Snapshot()

	_, err := Window(b, 1)
	require.NoError(t, err)

	assert.Equal(t, before, b.Snapshot())
}
