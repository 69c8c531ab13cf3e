// Package api exposes the console's REST surface and maps backend failures to
// the error contract the UI shell renders: validation problems return 400
// before any network call, unreachable collaborators return 502 with the
// service named, and normalization problems never surface at all.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shettyvedanth21/Factory-Copilot/internal/analytics"
	"github.com/shettyvedanth21/Factory-Copilot/internal/devices"
	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
	"github.com/shettyvedanth21/Factory-Copilot/internal/reports"
	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
	"github.com/shettyvedanth21/Factory-Copilot/internal/session"
	"github.com/shettyvedanth21/Factory-Copilot/internal/storage"
	"github.com/shettyvedanth21/Factory-Copilot/internal/telemetry"
)

type Handler struct {
	Log          *slog.Logger
	Devices      *devices.Reader
	Telemetry    *telemetry.Reader
	Registry     *rules.Registry
	Analytics    *analytics.Client
	Orchestrator *analytics.Orchestrator
	Reports      *reports.Client
	Sessions     *session.Store
	Drafts       *storage.Repository
	Timeout      time.Duration
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

// writeError maps an error to the UI contract.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *rules.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok": false, "code": "VALIDATION", "field": verr.Field, "message": verr.Problem,
		})
		return
	}
	var rerr *remote.Error
	if errors.As(err, &rerr) {
		h.Log.Warn("collaborator call failed", slog.String("service", rerr.Service), slog.Int("status", rerr.Status), slog.String("message", rerr.Message))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"ok": false, "code": "SERVICE_UNREACHABLE", "service": rerr.Service, "message": rerr.Message,
		})
		return
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "not found"})
		return
	}
	h.Log.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "internal error"})
}

type loginRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// handleLogin opens a session. Credential verification happens upstream at
// the identity gateway; the console only establishes its own session state.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "user_id is required"})
		return
	}
	sess, err := h.Sessions.Create(r.Context(), req.UserID, req.Name, req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "message": "no session"})
		return
	}
	if err := h.Sessions.Delete(r.Context(), sess.Token); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": time.Now().UTC()})
}
