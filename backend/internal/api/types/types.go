package types

import (
	"time"

	"joint-diagnostics/backend/internal/diagnostics"
)

// ErrorResponse is the unified error response type.
//
//nolint:errname // ErrorResponse is an API response type, not a traditional error
type ErrorResponse struct {
	// HTTP status code (internal only, not sent to client)
	StatusCode int `json:"-"`
	// Request ID for tracking
	RequestID string `json:"requestID"`
	// High-level error message
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// PingResponse is the response to a ping request.
type PingResponse struct {
	// Human-readable message
	Message string `json:"message"`
	// Status of the ping
	Status PingStatus `json:"status"`
}

// PingStatus represents the status of a ping request.
type PingStatus string

const (
	// PingStatusOK means the ping was successful.
	PingStatusOK PingStatus = "OK"
)

// HealthResponse reports the reporter's dependencies and the latest joint health.
type HealthResponse struct {
	// Memory is true when the memory service was resolved
	Memory bool `json:"memory"`
	// MQTT is true when the report sink holds a broker connection
	MQTT bool `json:"mqtt"`
	// Joints is true when the latest poll produced a report without ERROR joints
	Joints bool `json:"joints"`
	// Status is the most severe joint status of the latest poll
	Status diagnostics.Status `json:"status"`
	// LastPoll is when the latest poll completed, if any
	LastPoll *time.Time `json:"lastPoll,omitempty"`
}

// PollRequest is the optional body of an on-demand poll.
type PollRequest struct {
	// Wait runs the poll before responding and returns its report
	Wait bool `json:"wait"`
}

// PollResponse is the response to an on-demand poll.
type PollResponse struct {
	// Queued is true when an asynchronous poll was scheduled
	Queued bool `json:"queued"`
	// Healthy is the result of a synchronous poll
	Healthy *bool `json:"healthy,omitempty"`
	// Report is the report produced by a synchronous poll
	Report *diagnostics.Report `json:"report,omitempty"`
}
