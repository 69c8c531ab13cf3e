package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/shettyvedanth21/Factory-Copilot/internal/analytics"
)

func (h *Handler) handleDatasetList(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimSpace(r.URL.Query().Get("device_id"))
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	datasets, err := h.Analytics.ListDatasets(ctx, deviceID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

func (h *Handler) handleJobRun(w http.ResponseWriter, r *http.Request) {
	var req analytics.JobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if req.DeviceID == "" || req.DatasetKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "device_id and dataset_key are required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	jobID, err := h.Orchestrator.Submit(ctx, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jobsSubmitted.Inc()
	writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "status": analytics.StatusRunning})
}

// handleJobSnapshot serves the orchestrator's current view: state, status
// label, error, and normalized results once completed.
func (h *Handler) handleJobSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.Snapshot())
}

// handleJobStop is the view-teardown path: it cancels the poll loop without
// waiting for a terminal state.
func (h *Handler) handleJobStop(w http.ResponseWriter, _ *http.Request) {
	h.Orchestrator.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
