package sentimentapi

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"StockLens/internal/httpx"
	"StockLens/internal/model"
	"StockLens/internal/sentiment"
)

// Server exposes a Store over HTTP.
type Server struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewServer creates the analysis service. A nil now uses time.Now.
func NewServer(store Store, logger zerolog.Logger, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{store: store, logger: logger, now: now}
}

// Handler returns the routed handler.
//
//	GET /analyze/{symbol}      analysis, or the neutral answer for unknown symbols
//	GET /api/analyze/{symbol}  same, older path
//	PUT /analyze/{symbol}      store an analysis
//	GET /symbols               symbols with a stored analysis
//	GET /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analyze/{symbol}", s.handleAnalyze)
	mux.HandleFunc("GET /api/analyze/{symbol}", s.handleAnalyze)
	mux.HandleFunc("PUT /analyze/{symbol}", s.handleUpsert)
	mux.HandleFunc("GET /symbols", s.handleSymbols)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return httpx.Wrap(s.logger, mux)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	symbol, err := model.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, ok, err := s.store.Get(r.Context(), symbol)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("analysis lookup failed")
		httpx.WriteError(w, http.StatusInternalServerError, "analysis store unavailable")
		return
	}
	if !ok {
		a = sentiment.NeutralAnalysis(symbol)
	}
	httpx.WriteJSON(w, http.StatusOK, sentiment.NewResponse(symbol, a, s.now()))
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	symbol, err := model.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var a sentiment.Analysis
	if !httpx.DecodeJSON(w, r, &a) {
		return
	}
	if a.Emotion == "" {
		httpx.WriteError(w, http.StatusBadRequest, "emotion is required")
		return
	}
	if err := s.store.Upsert(r.Context(), symbol, a); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("analysis upsert failed")
		httpx.WriteError(w, http.StatusInternalServerError, "analysis store unavailable")
		return
	}
	s.logger.Info().Str("symbol", symbol).Str("emotion", a.Emotion).Msg("analysis stored")
	httpx.WriteJSON(w, http.StatusOK, sentiment.NewResponse(symbol, a, s.now()))
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.store.Symbols(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "analysis store unavailable")
		return
	}
	sort.Strings(symbols)
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"symbols": symbols})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("sentiment api listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
