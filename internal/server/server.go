// Package server exposes conversion over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eolymp/go-latexmd"
)

// bodyOverhead leaves room for JSON quoting around the largest accepted text
const bodyOverhead = 64 << 10

type Server struct {
	normalizer   *latexmd.Normalizer
	maxInputSize int
	logger       *slog.Logger
}

type Config struct {
	Normalizer   *latexmd.Normalizer
	MaxInputSize int
	Logger       *slog.Logger
}

func New(cfg Config) *Server {
	if cfg.Normalizer == nil {
		cfg.Normalizer = latexmd.New()
	}

	if cfg.MaxInputSize <= 0 {
		cfg.MaxInputSize = latexmd.DefaultMaxInputSize
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Server{normalizer: cfg.Normalizer, maxInputSize: cfg.MaxInputSize, logger: cfg.Logger}
}

type NormalizeRequest struct {
	Text  string `json:"text"`
	Force bool   `json:"force,omitempty"`
}

type NormalizeResponse struct {
	Text   string         `json:"text"`
	Issues map[string]int `json:"issues,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns routes of the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.health)
	r.Post("/v1/normalize", s.normalize)

	return r
}

// Serve listens on addr until the context is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.maxInputSize+bodyOverhead))

	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: latexmd.ErrInputTooLarge.Error()})
			return
		}

		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	convert := s.normalizer.Check
	if req.Force {
		convert = s.normalizer.Convert
	}

	text, report := convert(req.Text)
	resp := NormalizeResponse{Text: text, Issues: issues(report)}

	s.logger.Debug("normalized", "request_id", middleware.GetReqID(r.Context()), "size", len(req.Text), "force", req.Force)

	writeJSON(w, http.StatusOK, resp)
}

func issues(r latexmd.Report) map[string]int {
	if r.Empty() {
		return nil
	}

	return r.Counts()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
