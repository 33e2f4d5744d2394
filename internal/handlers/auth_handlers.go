package handlers

import (
	"net/http"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/pkg/logger"
)

// Login checks the credentials against the remote portal. Any failure beyond
// input validation answers with the same generic message so callers learn
// nothing about the portal's internals.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		if domain.IsValidation(err) {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      false,
			"message": "Invalid credentials",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"user":  res.User,
		"token": res.Token,
	})
}

// RemoteHealth probes the portal's base URL so operators can tell a portal
// outage apart from a bug in the swipe mirror.
func (h *Handlers) RemoteHealth(w http.ResponseWriter, r *http.Request) {
	base := h.cfg.Remote.BaseURL
	if base == "" {
		writeError(w, http.StatusServiceUnavailable, "Remote portal is not configured")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, base, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	res, err := h.remoteHTTP.Do(req)
	if err != nil {
		logger.WarnContext(r.Context(), "Remote portal probe failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      false,
			"message": "Failed to connect to remote portal",
		})
		return
	}
	res.Body.Close()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": res.StatusCode,
	})
}
