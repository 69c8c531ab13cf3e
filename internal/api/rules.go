package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shettyvedanth21/Factory-Copilot/internal/analytics"
	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
)

func (h *Handler) handleRuleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics":       rules.Metrics,
		"units":         rules.MetricUnits,
		"operators":     rules.Operators,
		"channels":      rules.Channels,
		"scopes":        []rules.Scope{rules.ScopeAllDevices, rules.ScopeSpecificDevices, rules.ScopeDeviceType},
		"analysisTypes": analytics.AnalysisTypes,
		"models":        analytics.Models,
	})
}

func (h *Handler) handleRuleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := rules.Filter{
		DeviceID: strings.TrimSpace(q.Get("device_id")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	page := atoiDefault(q.Get("page"), 1)
	pageSize := atoiDefault(q.Get("page_size"), 20)
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	list, total, err := h.Registry.List(ctx, filter, page, pageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list, "total": total})
}

type ruleSaveRequest struct {
	Draft   rules.Draft `json:"draft"`
	DraftID string      `json:"draftId"`
}

func (h *Handler) handleRuleCreate(w http.ResponseWriter, r *http.Request) {
	var req ruleSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if err := rules.Validate(req.Draft); err != nil {
		h.writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rule, err := h.Registry.Create(ctx, rules.Translate(req.Draft))
	if err != nil {
		h.writeError(w, err)
		return
	}
	rulesSubmitted.Inc()
	h.discardDraft(r, req.DraftID)
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) handleRuleUpdate(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")
	var req ruleSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if err := rules.Validate(req.Draft); err != nil {
		h.writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rule, err := h.Registry.Update(ctx, ruleID, rules.Translate(req.Draft).AsPatch())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.discardDraft(r, req.DraftID)
	writeJSON(w, http.StatusOK, rule)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleRuleStatus(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if req.Status != rules.StatusActive && req.Status != rules.StatusPaused {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "status must be active or paused"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Registry.SetStatus(ctx, ruleID, req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleRuleDelete is idempotent from the UI's view: a rule already gone from
// the engine counts as deleted.
func (h *Handler) handleRuleDelete(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Registry.Delete(ctx, ruleID); err != nil {
		var rerr *remote.Error
		if errors.As(err, &rerr) && rerr.Status == http.StatusNotFound {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type previewRequest struct {
	Draft rules.Draft `json:"draft"`
}

// handleRulePreview shows the exact submission a draft would produce without
// persisting anything.
func (h *Handler) handleRulePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rules.Translate(req.Draft))
}

func atoiDefault(s string, fallback int) int {
	if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
