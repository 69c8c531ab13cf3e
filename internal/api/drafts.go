package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
	"github.com/shettyvedanth21/Factory-Copilot/internal/session"
)

type draftSaveRequest struct {
	Draft rules.Draft `json:"draft"`
}

func (h *Handler) handleDraftList(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	list, err := h.Drafts.ListDrafts(ctx, sess.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": list})
}

func (h *Handler) handleDraftGet(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rec, err := h.Drafts.GetDraft(ctx, sess.UserID, chi.URLParam(r, "draftId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDraftCreate(w http.ResponseWriter, r *http.Request) {
	h.saveDraft(w, r, "")
}

func (h *Handler) handleDraftUpdate(w http.ResponseWriter, r *http.Request) {
	h.saveDraft(w, r, chi.URLParam(r, "draftId"))
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request, draftID string) {
	sess, _ := session.FromContext(r.Context())
	var req draftSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	rec, err := h.Drafts.SaveDraft(ctx, sess.UserID, draftID, req.Draft)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDraftDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Drafts.DeleteDraft(ctx, sess.UserID, chi.URLParam(r, "draftId")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// discardDraft clears an autosaved draft after its rule was submitted. Best
// effort: the rule is already persisted remotely, so a failure here only
// leaves a stale draft behind.
func (h *Handler) discardDraft(r *http.Request, draftID string) {
	if draftID == "" || h.Drafts == nil {
		return
	}
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
	defer cancel()
	if err := h.Drafts.DeleteDraft(ctx, sess.UserID, draftID); err != nil {
		h.Log.Warn("failed to discard draft", slog.String("draftId", draftID), slog.String("error", err.Error()))
	}
}
