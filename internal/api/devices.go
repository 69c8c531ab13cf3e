package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleDeviceList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	list, err := h.Devices.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": list})
}

func (h *Handler) handleDeviceGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	device, err := h.Devices.Get(ctx, chi.URLParam(r, "deviceId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *Handler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	limit := atoiDefault(r.URL.Query().Get("limit"), 50)
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	readings, err := h.Telemetry.Latest(ctx, chi.URLParam(r, "deviceId"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": readings, "total": len(readings)})
}

func (h *Handler) handleTelemetryStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	stats, err := h.Telemetry.DeviceStats(ctx, chi.URLParam(r, "deviceId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
