package middleware

import (
	"net/http"

	"github.com/dingwen07/httpmq/internal/logging"
)

// RequestContextMiddleware adds request attributes to context early in the
// middleware chain, before handlers have resolved a session id or topic.
func RequestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := &logging.RequestAttrs{
			Method: r.Method,
			Path:   r.URL.Path,
			IP:     logging.ExtractClientIP(r),
		}
		ctx := logging.WithRequestAttrs(r.Context(), attrs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
