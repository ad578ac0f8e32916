package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// EnforceHost allows requests only if r.Host matches one of the allowed hosts.
// Supports wildcard patterns like "*.example.com".
// If allowedHosts is empty, it acts as a passthrough.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range allowedHosts {
				if matchHost(r.Host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("request rejected by host check", logger.String("host", r.Host))
			respond.Detail(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// matchHost checks if host matches pattern (supports wildcard *.example.com).
// "localhost" also matches "localhost:8731".
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}

	if h, _, ok := strings.Cut(host, ":"); ok && !strings.Contains(pattern, ":") && h == pattern {
		return true
	}

	// Wildcard match: *.example.com matches sub.example.com
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		return strings.HasSuffix(host, suffix)
	}

	return false
}
