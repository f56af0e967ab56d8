package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"joint-diagnostics/backend/internal/diagnostics"
)

// Reporter is the read and poll side of the diagnostics reporter.
type Reporter interface {
	Poll(ctx context.Context) (diagnostics.Report, bool, error)
	LastReport() (diagnostics.Report, bool)
	Status() diagnostics.Status
	Connected() bool
	Healthy() bool
}

// Poller schedules polls and remembers the latest one.
type Poller interface {
	Trigger() bool
	LastPoll() (time.Time, bool, bool)
}

// Connection reports whether the report sink is connected.
type Connection interface {
	IsConnected() bool
}

// Handler serves the diagnostics HTTP API.
type Handler struct {
	l        *slog.Logger
	reporter Reporter
	poller   Poller
	conn     Connection
	metrics  http.Handler
}

// NewHandler creates a new API handler. metrics may be nil.
func NewHandler(l *slog.Logger, reporter Reporter, poller Poller, conn Connection, metrics http.Handler) *Handler {
	return &Handler{
		l:        l.With(slog.String("component", "api")),
		reporter: reporter,
		poller:   poller,
		conn:     conn,
		metrics:  metrics,
	}
}

// Router builds the HTTP routes.
func (h *Handler) Router() http.Handler {
	mw := NewMiddlewareHandler(h.l)

	r := chi.NewRouter()
	r.Use(mw.RequestIDMiddleware)
	r.Use(mw.LoggerMiddleware)
	r.Use(mw.RecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", ErrorHandler(h.Ping))
		r.Get("/health", ErrorHandler(h.Health))

		r.Route("/diagnostics", func(r chi.Router) {
			r.Get("/", ErrorHandler(h.GetDiagnostics))
			r.Get("/status", ErrorHandler(h.GetStatus))
			r.Post("/poll", ErrorHandler(h.Poll))
		})
	})

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.NotFound(ErrorHandler(func(http.ResponseWriter, *http.Request) error {
		return NewError(http.StatusNotFound, "Not Found")
	}))
	r.MethodNotAllowed(ErrorHandler(func(http.ResponseWriter, *http.Request) error {
		return NewError(http.StatusMethodNotAllowed, "Method Not Allowed")
	}))

	return r
}
