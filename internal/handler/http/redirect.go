package http

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/service"
)

// RedirectHandler resolves short URL hashes into redirects.
type RedirectHandler struct {
	redirection *service.RedirectionService
	log         *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(redirection *service.RedirectionService, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		redirection: redirection,
		log:         log,
	}
}

// HandleRedirect handles GET /{hash}. Every terminal state of the
// redirection state machine maps to a distinct status code; a hash whose
// validation is still pending is a transient condition, signalled with
// 503 and a Retry-After hint.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimPrefix(r.URL.Path, "/")

	// Keep system endpoints out of the hash namespace
	if hash == "" || strings.HasPrefix(hash, "api/") ||
		strings.HasPrefix(hash, "health") || strings.HasPrefix(hash, "ready") ||
		strings.HasPrefix(hash, "metrics") {
		http.NotFound(w, r)
		return
	}

	redirection, err := h.redirection.Redirect(r.Context(), hash, extractIPAddress(r), r.UserAgent())
	if err != nil {
		h.respondError(w, hash, err)
		return
	}

	h.log.Info("successful redirect",
		zap.String("hash", hash),
		zap.String("target", redirection.Target),
		zap.Int("mode", redirection.Mode))

	http.Redirect(w, r, redirection.Target, redirection.Mode)
}

func (h *RedirectHandler) respondError(w http.ResponseWriter, hash string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidHashFormat):
		writeError(w, h.log, http.StatusBadRequest, "Invalid hash format")
	case errors.Is(err, service.ErrHashNotFound):
		writeError(w, h.log, http.StatusNotFound, "Hash not found")
	case errors.Is(err, service.ErrNotValidated):
		w.Header().Set("Retry-After", "1")
		writeError(w, h.log, http.StatusServiceUnavailable, "URL is still being validated, retry later")
	case errors.Is(err, service.ErrUnsafe):
		writeError(w, h.log, http.StatusForbidden, "URL target is unsafe")
	case errors.Is(err, service.ErrUnreachable):
		writeError(w, h.log, http.StatusGone, "URL target is unreachable")
	case errors.Is(err, service.ErrTooManyRequests):
		writeError(w, h.log, http.StatusTooManyRequests, "Too many redirections for this hash")
	default:
		h.log.Error("failed to process redirect", zap.String("hash", hash), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Internal server error")
	}
}

// extractIPAddress extracts the client IP from the request, honoring
// proxy headers in priority order.
func extractIPAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For may hold a comma-separated list
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
