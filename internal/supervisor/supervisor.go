// Package supervisor spawns one pipeline per configured symbol and
// joins them: a failure in one symbol's pipeline is logged but does
// not tear down its peers.
package supervisor

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cptdom/whiplash/internal/config"
	"github.com/cptdom/whiplash/internal/pipeline"
	"github.com/cptdom/whiplash/internal/status"
)

// Supervisor owns the per-symbol pipelines and the status surface.
type Supervisor struct {
	pipelines []*pipeline.Pipeline
	log       zerolog.Logger
}

// New builds a Supervisor with one Pipeline per configured symbol.
func New(cfg *config.Config, log zerolog.Logger) *Supervisor {
	th := pipeline.Thresholds{
		ATRThreshold:         cfg.ATRThreshold,
		ATRMinCandlesPercent: cfg.ATRMinCandlesPercent,
		MinVolUSDT:           cfg.MinVolUSDT,
	}

	pipelines := make([]*pipeline.Pipeline, 0, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		pipelines = append(pipelines, pipeline.New(symbol, th, log))
	}

	return &Supervisor{pipelines: pipelines, log: log}
}

// Run launches every pipeline and the status server concurrently. A
// single pipeline's failure is logged and does not cancel its peers —
// only ctx cancellation (operator shutdown) does.
func (s *Supervisor) Run(ctx context.Context, statusAddr string) error {
	g, gctx := errgroup.WithContext(ctx)

	sources := make([]status.VerdictSource, len(s.pipelines))
	for i, p := range s.pipelines {
		sources[i] = p
	}
	statusSrv := status.New(statusAddr, sources, s.log)
	g.Go(func() error { return statusSrv.Run(gctx) })

	for _, p := range s.pipelines {
		p := p
		g.Go(func() error {
			if err := p.Run(ctx); err != nil {
				s.log.Error().Err(err).Str("symbol", p.Symbol()).Msg("pipeline ended with error")
			}
			return nil
		})
	}

	return g.Wait()
}
