package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

// StatusSource is the read side of a connection manager.
type StatusSource interface {
	Status() lifecycle.Status
	IsConnected() bool
	Session() string
	Counts() map[lifecycle.Signal]uint64
}

// Check is a readiness dependency, typically a driver Healthcheck.
type Check func(ctx context.Context) error

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    lifecycle.Status            `json:"status"`
	Connected bool                        `json:"connected"`
	Session   string                      `json:"session,omitempty"`
	Counts    map[lifecycle.Signal]uint64 `json:"counts"`
}

// Routes builds the status router for src.
func Routes(src StatusSource, log *slog.Logger, checks ...Check) http.Handler {
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := src.Status()
		code := http.StatusOK
		if !src.IsConnected() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(status))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		_, _ = w.Write([]byte("READY"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Status:    src.Status(),
			Connected: src.IsConnected(),
			Session:   src.Session(),
			Counts:    src.Counts(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.ErrorContext(r.Context(), "failed to encode status", logger.Error(err))
		}
	})

	return r
}
