package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/internal/repo/redisrepo"
	"github.com/absentia-hq/absentia/internal/service"
	"github.com/absentia-hq/absentia/pkg/auth"
	"github.com/absentia-hq/absentia/pkg/config"
	"github.com/absentia-hq/absentia/pkg/logger"
)

type Handlers struct {
	attendance service.AttendanceService
	auth       service.AuthService
	limiter    redisrepo.RateLimiter
	cfg        *config.Config
	remoteHTTP *http.Client
}

func New(
	attendance service.AttendanceService,
	authSvc service.AuthService,
	limiter redisrepo.RateLimiter,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		attendance: attendance,
		auth:       authSvc,
		limiter:    limiter,
		cfg:        cfg,
		remoteHTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// RequireJWT guards endpoints behind the session token issued at login.
func (h *Handlers) RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.Parse(token, h.cfg.Auth.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), logger.EmailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginRateLimit throttles login attempts per client IP so a misbehaving
// caller cannot hammer the remote portal through us.
func (h *Handlers) LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "login:" + clientIP(r)
		allowed, err := h.limiter.Allow(r.Context(), key, h.cfg.Auth.LoginRateLimit, h.cfg.Auth.LoginRateWindow)
		if err == nil && !allowed {
			writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"ok":      false,
		"message": message,
	})
}

// writeServiceError maps the error taxonomy onto HTTP: validation is a 400,
// business rules come back as their own message, everything else is opaque.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Message)
		return
	}

	var bre *domain.BusinessRuleError
	if errors.As(err, &bre) {
		writeError(w, http.StatusConflict, bre.Message)
		return
	}

	logger.ErrorContext(r.Context(), "Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
