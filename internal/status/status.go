// Package status serves a small read-only HTTP surface reporting each
// symbol's latest readiness verdict. It is purely observational: it
// never mutates pipeline state and never triggers any downstream action.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cptdom/whiplash/internal/pipeline"
)

// VerdictSource is the subset of *pipeline.Pipeline the status server
// depends on, kept narrow so it's trivial to fake in tests.
type VerdictSource interface {
	Symbol() string
	LastVerdict() pipeline.Verdict
}

// verdictView is the JSON shape returned by GET /status.
type verdictView struct {
	Symbol      string    `json:"symbol"`
	ATR         float64   `json:"atr"`
	VolumeDelta float64   `json:"volume_delta"`
	Ready       bool      `json:"ready"`
	At          time.Time `json:"at"`
}

// Server serves /healthz and /status over HTTP.
type Server struct {
	sources []VerdictSource
	log     zerolog.Logger
	srv     *http.Server
}

// New builds a Server that reports on the given sources.
func New(addr string, sources []VerdictSource, log zerolog.Logger) *Server {
	s := &Server{sources: sources, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Run starts the HTTP server and blocks until ctx is canceled, then
// performs a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("status server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	views := make([]verdictView, 0, len(s.sources))
	for _, src := range s.sources {
		v := src.LastVerdict()
		views = append(views, verdictView{
			Symbol:      src.Symbol(),
			ATR:         v.ATR,
			VolumeDelta: v.VolumeDelta,
			Ready:       v.Ready,
			At:          v.At,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		s.log.Error().Err(err).Msg("encoding status response")
	}
}
