// Package pipeline owns one symbol's state and runs
// its two cooperative tasks: an ingest task that appends decoded klines
// to the ring, and a 1Hz evaluator task that reads the ring through the
// ATR and volume-delta engines to produce a readiness verdict.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cptdom/whiplash/internal/atr"
	"github.com/cptdom/whiplash/internal/model"
	"github.com/cptdom/whiplash/internal/ring"
	"github.com/cptdom/whiplash/internal/volumedelta"
)

const (
	binanceWSHost = "fstream.binance.com"

	atrCheckWindowSeconds = 1
	warmupWindow          = 60 * time.Second
	evaluateInterval      = 1 * time.Second

	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Thresholds holds the per-symbol readiness gate parameters.
type Thresholds struct {
	ATRThreshold         float64 // percent
	ATRMinCandlesPercent float64 // fraction in (0,1]
	MinVolUSDT           float64
}

// Verdict is the outcome of one evaluator tick.
type Verdict struct {
	Symbol      string
	ATR         float64
	VolumeDelta float64
	Ready       bool
	At          time.Time
}

// Pipeline owns one symbol's ring and runs its ingest and evaluator
// tasks under a single mutex.
type Pipeline struct {
	symbol     string
	thresholds Thresholds
	log        zerolog.Logger

	mu  sync.Mutex
	buf *ring.Buffer

	verdictMu   sync.RWMutex
	lastVerdict Verdict
}

// New creates a Pipeline for symbol with the given thresholds.
func New(symbol string, thresholds Thresholds, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		symbol:     symbol,
		thresholds: thresholds,
		log:        log.With().Str("symbol", symbol).Logger(),
		buf:        ring.New(),
	}
}

// Symbol returns the symbol this pipeline tracks.
func (p *Pipeline) Symbol() string { return p.symbol }

// LastVerdict returns the most recent evaluator verdict, or the zero
// Verdict if the evaluator has not ticked yet.
func (p *Pipeline) LastVerdict() Verdict {
	p.verdictMu.RLock()
	defer p.verdictMu.RUnlock()
	return p.lastVerdict
}

// Run starts the ingest and evaluator tasks and blocks until the
// context is canceled or one of them returns a non-nil error — the
// pipeline completes only when one of its tasks ends. A graceful
// shutdown cancels ctx, which naturally ends both.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.ingestLoop(ctx) })
	g.Go(func() error { return p.evaluateLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pipeline) websocketURL() string {
	return fmt.Sprintf("wss://%s/ws/%s@kline_1m", binanceWSHost, strings.ToLower(p.symbol))
}

// ingestLoop connects to the exchange and appends decoded snapshots to
// the ring, reconnecting with exponential backoff on transport errors.
func (p *Pipeline) ingestLoop(ctx context.Context) error {
	delay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := p.connectAndConsume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			p.log.Error().Err(err).Dur("retry_in", delay).Msg("ingest transport error, reconnecting")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
			continue
		}
		delay = initialReconnectDelay
	}
}

func (p *Pipeline) connectAndConsume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.websocketURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-closed:
		}
	}()
	defer close(closed)

	p.log.Info().Str("url", p.websocketURL()).Msg("connected to kline stream")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var ev model.KlineEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			p.log.Warn().Err(err).Msg("discarding malformed kline frame")
			continue
		}
		snap, err := model.DecodeKline(ev)
		if err != nil {
			p.log.Warn().Err(err).Msg("discarding undecodable kline")
			continue
		}

		p.mu.Lock()
		p.buf.PushBack(snap)
		p.mu.Unlock()
	}
}

// evaluateLoop sleeps for the warm-up window, then ticks at 1Hz,
// evaluating the ATR and volume-delta gates.
func (p *Pipeline) evaluateLoop(ctx context.Context) error {
	p.log.Info().Dur("warmup", warmupWindow).Msg("waiting for buffer warm-up")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(warmupWindow):
	}

	ticker := time.NewTicker(evaluateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Pipeline) tick() {
	p.mu.Lock()
	buf := p.buf
	result, err := atr.CheckCondition(buf, atrCheckWindowSeconds, p.thresholds.ATRThreshold, p.thresholds.ATRMinCandlesPercent)
	volDelta := volumedelta.Calc(buf, atrCheckWindowSeconds)
	p.mu.Unlock()

	if err != nil {
		p.log.Error().Err(err).Msg("evaluator error")
		return
	}

	ready := result.LimitPassed && volDelta >= p.thresholds.MinVolUSDT
	v := Verdict{Symbol: p.symbol, ATR: result.ATR, VolumeDelta: volDelta, Ready: ready, At: time.Now().UTC()}

	p.verdictMu.Lock()
	p.lastVerdict = v
	p.verdictMu.Unlock()

	ev := p.log.Info().Float64("atr", result.ATR).Float64("volume_delta", volDelta).Bool("ready", ready)
	if ready {
		ev.Msg("READY for trade run")
	} else {
		ev.Msg("idle")
	}
}
