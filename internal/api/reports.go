package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shettyvedanth21/Factory-Copilot/internal/reports"
)

func (h *Handler) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	var req reports.Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	exp, err := h.Reports.Generate(ctx, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handler) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	exp, err := h.Reports.Status(ctx, chi.URLParam(r, "exportId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handler) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	data, contentType, err := h.Reports.Download(ctx, chi.URLParam(r, "exportId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
