package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/dingwen07/httpmq/internal/logging"
	"github.com/dingwen07/httpmq/internal/models"
)

// sessionIDHeader is the header name session id may be supplied in
// (spec §6). It takes precedence over query param / body field.
const sessionIDHeader = "Session-Id"

// sessionIDForGet resolves a session id for a GET endpoint: the
// Session-Id header, falling back to the session_id query parameter.
func sessionIDForGet(r *http.Request) string {
	if id := r.Header.Get(sessionIDHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("session_id")
}

// sessionIDForBody resolves a session id for a POST/DELETE endpoint: the
// Session-Id header, falling back to session_id as already decoded from
// the JSON body.
func sessionIDForBody(r *http.Request, bodySessionID string) string {
	if id := r.Header.Get(sessionIDHeader); id != "" {
		return id
	}
	return bodySessionID
}

// writeJSON serializes data as JSON and writes it to the response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response. For simple client errors
// (400-level), use this directly. For server errors with an underlying
// cause, use writeErrorWithCause so it gets logged and reported.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}

// writeErrorWithCause writes an error response and logs the error with
// stack trace, reporting it to Sentry when configured.
func writeErrorWithCause(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	writeError(w, status, message)

	if status < 500 || err == nil {
		return
	}

	wrappedErr := logging.WrapError(err, message)
	logging.LogErrorWithStatus(ctx, status, "error response", wrappedErr)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(wrappedErr)
	} else {
		sentry.CaptureException(wrappedErr)
	}
}
