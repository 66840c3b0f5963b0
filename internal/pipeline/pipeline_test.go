package pipeline

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cptdom/whiplash/internal/model"
)

func seedVolatileWindow(p *Pipeline) {
	// Anchored mid-second so the 1-second window spans two calendar
	// seconds: the ATR needs at least two OHLC rows to be non-zero.
	base := time.Date(2024, 1, 1, 0, 0, 1, 500_000_000, time.UTC)
	rows := []struct {
		offsetMs int64
		close    float64
		value    float64
	}{
		{-1100, 50, 5},
		{-900, 70, 6},
		{-700, 40, 7},
		{-500, 90, 8},
		{-300, 60, 9},
		{-100, 55, 10},
	}
	for _, r := range rows {
		p.buf.PushBack(model.Snapshot{
			Ts:         base.Add(time.Duration(r.offsetMs) * time.Millisecond),
			ClosePrice: r.close,
			Value:      r.value,
		})
	}
}

func TestTickEmitsReadyWhenThresholdsArePermissive(t *testing.T) {
	p := New("BTCUSDT", Thresholds{ATRThreshold: 0.0001, ATRMinCandlesPercent: 0.0001, MinVolUSDT: 0.0001}, zerolog.Nop())
	seedVolatileWindow(p)

	p.tick()
	v := p.LastVerdict()
	assert.Equal(t, "BTCUSDT", v.Symbol)
	assert.True(t, v.Ready)
}

func TestTickEmitsIdleWhenThresholdsAreStrict(t *testing.T) {
	p := New("BTCUSDT", Thresholds{ATRThreshold: 1000, ATRMinCandlesPercent: 0.0001, MinVolUSDT: 1e9}, zerolog.Nop())
	seedVolatileWindow(p)

	p.tick()
	v := p.LastVerdict()
	assert.False(t, v.Ready)
}

func TestConsecutiveTicksOnUnchangedRingAreIdempotent(t *testing.T) {
	p := New("ETHUSDT", Thresholds{ATRThreshold: 0.0001, ATRMinCandlesPercent: 0.0001, MinVolUSDT: 0.0001}, zerolog.Nop())
	seedVolatileWindow(p)

	p.tick()
	first := p.LastVerdict()

	p.tick()
	second := p.LastVerdict()

	assert.Equal(t, first.ATR, second.ATR)
	assert.Equal(t, first.VolumeDelta, second.VolumeDelta)
	assert.Equal(t, first.Ready, second.Ready)
}

func TestLastVerdictZeroValueBeforeFirstTick(t *testing.T) {
	p := New("BTCUSDT", Thresholds{ATRThreshold: 0.35, ATRMinCandlesPercent: 0.8, MinVolUSDT: 1}, zerolog.Nop())
	v := p.LastVerdict()
	require.Equal(t, Verdict{}, v)
}

func TestWebsocketURLLowercasesSymbol(t *testing.T) {
	p := New("BTCUSDT", Thresholds{}, zerolog.Nop())
	assert.Equal(t, "wss://fstream.binance.com/ws/btcusdt@kline_1m", p.websocketURL())
}
