// Package server exposes report building over HTTP for presentation clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"StockLens/internal/httpx"
	"StockLens/internal/model"
	"StockLens/internal/report"
)

const (
	// maxWindowDays bounds the window query parameter.
	maxWindowDays = 3650

	// KindInvalidWindow is the error kind for a malformed window parameter. It is a request
	// error only and never produced by the report pipeline.
	KindInvalidWindow = "INVALID_WINDOW"
)

// Server serves GET /report/{symbol}.
type Server struct {
	builder report.Builder
	logger  zerolog.Logger
}

func New(builder report.Builder, logger zerolog.Logger) *Server {
	return &Server{builder: builder, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /report/{symbol}", s.handleReport)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return httpx.Wrap(s.logger, mux)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxWindowDays {
			httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
				Error: fmt.Sprintf("window %q must be an integer between 1 and %d days", raw, maxWindowDays),
				Kind:  KindInvalidWindow,
				Stage: string(model.StageInput),
			})
			return
		}
		window = n
	}

	rep, err := s.builder.BuildWindow(r.Context(), symbol, window)
	if err != nil {
		WriteReportError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

// StatusFor maps an error kind to the HTTP status presented to clients.
func StatusFor(err error) int {
	switch model.KindOf(err) {
	case model.KindInvalidSymbol:
		return http.StatusBadRequest
	case model.KindDataUnavailable:
		return http.StatusNotFound
	case model.KindSourceUnreachable, model.KindProviderUnreachable:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// WriteReportError writes the typed error body used by report clients.
func WriteReportError(w http.ResponseWriter, err error) {
	httpx.WriteJSON(w, StatusFor(err), httpx.ErrorResponse{
		Error:     err.Error(),
		Kind:      string(model.KindOf(err)),
		Stage:     string(model.StageOf(err)),
		Retryable: model.Retryable(err),
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      45 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("report api listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
