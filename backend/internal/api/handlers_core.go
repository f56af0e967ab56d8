package api

import (
	"net/http"

	"joint-diagnostics/backend/internal/api/types"
)

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) error {
	RespondJSON(w, r, http.StatusOK, types.PingResponse{
		Message: "Pong", Status: types.PingStatusOK,
	})

	return nil
}

// Health reports 503 when the memory service or the broker is unreachable.
// Joint temperatures do not affect the status code.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	resp := types.HealthResponse{
		Memory: h.reporter.Connected(),
		MQTT:   h.conn.IsConnected(),
		Joints: h.reporter.Healthy(),
		Status: h.reporter.Status(),
	}

	if at, _, polled := h.poller.LastPoll(); polled {
		resp.LastPoll = &at
	}

	code := http.StatusOK
	if !resp.Memory || !resp.MQTT {
		code = http.StatusServiceUnavailable
	}

	RespondJSON(w, r, code, resp)

	return nil
}
