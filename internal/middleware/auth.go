// Package middleware provides HTTP middleware for admin authentication,
// CORS handling, rate limiting, and request context management.
package middleware

import (
	"net/http"

	"github.com/dingwen07/httpmq/internal/config"
	"github.com/dingwen07/httpmq/internal/logging"
)

// AdminAuth reports whether the request carries the configured admin key
// as a "key" query parameter, an Authorization header, or an Auth-Key
// header. Any match authorizes (spec §6).
func AdminAuth(cfg *config.Config, r *http.Request) bool {
	if r.URL.Query().Get("key") == cfg.AuthKey {
		return true
	}
	if r.Header.Get("Authorization") == cfg.AuthKey {
		return true
	}
	if r.Header.Get("Auth-Key") == cfg.AuthKey {
		return true
	}
	return false
}

// AdminOnlyMiddleware returns 401 for requests that do not carry a valid
// admin key.
func AdminOnlyMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !AdminAuth(cfg, r) {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventUnauthorizedAdmin, "invalid or missing admin key")
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
