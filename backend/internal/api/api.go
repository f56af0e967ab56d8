package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"joint-diagnostics/backend/internal/api/types"
	"joint-diagnostics/backend/pkg/utils"
)

const (
	MaxBodySize     = 1048576 // 1MB
	MaxBodyText     = "1MB"
	RequestIDHeader = "X-Request-ID"

	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 30 * time.Second
	WriteTimeout      = 30 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 30 * time.Second
)

type HTTPServer struct {
	l      *slog.Logger
	server *http.Server
}

func NewHTTPServer(l *slog.Logger, addr string, handler http.Handler) *HTTPServer {
	l = l.With(slog.String("component", "http-server"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
		ErrorLog:          log.New(utils.NewSlogWriter(l), "", 0),
	}

	return &HTTPServer{
		l:      l,
		server: srv,
	}
}

// ListenAndServe blocks until the server fails or is shut down.
func (s *HTTPServer) ListenAndServe() error {
	s.l.Info("http server listening", slog.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *HTTPServer) ShutdownWithDefaultTimeout() error {
	s.l.Info("http server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// HandlerFunc is a HTTP handler that can return an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// NewError creates a simple error response.
func NewError(statusCode int, message string) *types.ErrorResponse {
	return &types.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrorHandler wraps handlers with error handling.
func ErrorHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := GetLogger(r.Context())
		requestID := GetRequestID(r.Context())

		err := fn(w, r)
		if err == nil {
			return
		}

		// This is an expected HTTP error, we return the actual error to the client
		var httpErr *types.ErrorResponse
		if errors.As(err, &httpErr) {
			httpErr.RequestID = requestID
			l.Warn("handler returned HTTP error", slog.Int("status", httpErr.StatusCode), slog.String("message", httpErr.Message))
			RespondJSON(w, r, httpErr.StatusCode, httpErr)

			return
		}

		// Internal errors get logged with full context, but we return a generic message to the client
		l.Error("internal error", utils.ErrAttr(err))
		RespondJSON(w, r, http.StatusInternalServerError, &types.ErrorResponse{
			RequestID: requestID,
			Message:   "Internal Server Error",
		})
	}
}

// RespondJSON sends a JSON response with given status code
// If data is nil, only headers are sent
// In case of JSON encoding error, it is logged but not returned to client
// but the status code is sent already.
func RespondJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := utils.ToJSONStream(w, data); err != nil {
		// Note that if this fails header has already been written
		GetLogger(r.Context()).Error("failed to encode JSON response", utils.ErrAttr(err))
	}
}

// DecodeJSON decodes JSON from request body with error handling.
//
//nolint:ireturn // Generic functions must return type parameter T
func DecodeJSON[T any](r *http.Request) (T, error) {
	return decodeJSON[T](r, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints where the body may be
// omitted. An empty body, sized or chunked, decodes to the zero value.
//
//nolint:ireturn // Generic functions must return type parameter T
func DecodeOptionalJSON[T any](r *http.Request) (T, error) {
	return decodeJSON[T](r, true)
}

//nolint:ireturn // Generic functions must return type parameter T
func decodeJSON[T any](r *http.Request, allowEmpty bool) (T, error) {
	var zero T

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)

	res, err := utils.FromJSONStream[T](r.Body)
	if err != nil {
		var (
			syntaxError        *json.SyntaxError
			unmarshalTypeError *json.UnmarshalTypeError
			maxBytesError      *http.MaxBytesError
			extraDataError     *utils.ExtraDataAfterJSONError
		)

		switch {
		case errors.As(err, &syntaxError):
			return zero, NewError(http.StatusBadRequest, fmt.Sprintf("Invalid JSON syntax at position %d", syntaxError.Offset))

		case errors.As(err, &unmarshalTypeError):
			return zero, NewError(http.StatusBadRequest, fmt.Sprintf("Invalid type for field '%s'", unmarshalTypeError.Field))

		case errors.Is(err, io.EOF) && allowEmpty:
			return zero, nil

		case errors.Is(err, io.EOF):
			return zero, NewError(http.StatusBadRequest, "Request body is empty")

		case errors.Is(err, io.ErrUnexpectedEOF):
			return zero, NewError(http.StatusBadRequest, "Malformed JSON")

		case errors.As(err, &maxBytesError):
			return zero, NewError(http.StatusRequestEntityTooLarge, "Request body too large (max "+MaxBodyText+")")

		case errors.As(err, &extraDataError):
			return zero, NewError(http.StatusBadRequest, "Request body contains multiple JSON objects")

		case strings.HasPrefix(err.Error(), "json: unknown field"):
			// json package formats this as: json: unknown field "fieldname"
			return zero, NewError(http.StatusBadRequest, err.Error())

		default:
			return zero, NewError(http.StatusBadRequest, "Invalid JSON payload")
		}
	}

	return res, nil
}
