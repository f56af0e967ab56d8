package api

import (
	"net/http"

	"joint-diagnostics/backend/internal/api/types"
)

func (h *Handler) GetDiagnostics(w http.ResponseWriter, r *http.Request) error {
	report, ok := h.reporter.LastReport()
	if !ok {
		return NewError(http.StatusNotFound, "No diagnostics report available yet")
	}

	RespondJSON(w, r, http.StatusOK, report)

	return nil
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) error {
	RespondJSON(w, r, http.StatusOK, h.reporter.Status())

	return nil
}

// Poll schedules a poll, or runs one before responding when the body asks to wait.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) error {
	req, err := DecodeOptionalJSON[types.PollRequest](r)
	if err != nil {
		return err
	}

	if !req.Wait {
		RespondJSON(w, r, http.StatusAccepted, types.PollResponse{Queued: h.poller.Trigger()})

		return nil
	}

	report, healthy, err := h.reporter.Poll(r.Context())
	resp := types.PollResponse{Healthy: &healthy}

	// A failed poll has no report of its own.
	if err == nil {
		resp.Report = &report
	}

	RespondJSON(w, r, http.StatusOK, resp)

	return nil
}
