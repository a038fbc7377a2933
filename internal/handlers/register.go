// Package handlers contains the HTTP facade: request/response translation
// between JSON-over-HTTP and broker operations (spec §4.5, §6).
package handlers

import (
	"net/http"
	"time"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/ids"
	"github.com/dingwen07/httpmq/internal/logging"
	"github.com/dingwen07/httpmq/internal/models"
)

// SessionHandler handles session registration, subscription listing,
// and the non-blocking receive endpoint.
type SessionHandler struct {
	broker *broker.Broker
	audit  *audit.Logger
}

// NewSessionHandler creates a SessionHandler backed by broker, recording
// best-effort audit events through audit.
func NewSessionHandler(b *broker.Broker, a *audit.Logger) *SessionHandler {
	return &SessionHandler{broker: b, audit: a}
}

// Register creates a fresh, server-generated session id. Per spec §9
// OQ4, the HTTP boundary never lets a caller choose its own id even
// though Broker.Register itself accepts one.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	sessionID := ids.New()
	h.broker.Register(sessionID)

	h.audit.Record(r.Context(), "register", sessionID, "", "")
	writeJSON(w, http.StatusOK, models.RegisterResponse{SessionID: sessionID})
}

// GetSubscriptions returns the topics the session is currently
// subscribed to.
func (h *SessionHandler) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDForGet(r)

	topics, ok := h.broker.SessionTopics(sessionID)
	if !ok {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventUnknownSession, "subscribe list for unknown session")
		writeError(w, http.StatusBadRequest, "session_id not found")
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, models.SubscriptionsResponse{Topics: topics})
}

// Receive sweeps expired state, then returns every unacknowledged message
// visible to the session's subscriptions, newest-published-first.
func (h *SessionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.broker.Expire(time.Now())

	sessionID := sessionIDForGet(r)

	msgs, ok := h.broker.Receive(sessionID)
	if !ok {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventUnknownSession, "receive for unknown session")
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	dtos := make([]models.MessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = toMessageDTO(m)
	}
	writeJSON(w, http.StatusOK, models.ReceiveResponse{Messages: dtos})
}
