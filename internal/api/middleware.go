package api

import (
	"net/http"
	"strings"

	"github.com/shettyvedanth21/Factory-Copilot/internal/session"
)

// RequireSession resolves the bearer token once and threads the session
// through the request context. Handlers read it with session.FromContext.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "message": "missing session token"})
			return
		}
		sess, err := h.Sessions.Get(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "message": "invalid or expired session"})
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// OptionalSession resolves the bearer token when one is sent but lets
// anonymous requests through. Used on routes where a session only enables
// extras like draft autosave cleanup.
func (h *Handler) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if sess, err := h.Sessions.Get(r.Context(), token); err == nil {
				r = r.WithContext(session.WithSession(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
