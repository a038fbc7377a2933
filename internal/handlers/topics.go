package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/logging"
	"github.com/dingwen07/httpmq/internal/models"
)

// TopicHandler handles topic subscription and unsubscription.
type TopicHandler struct {
	broker *broker.Broker
	audit  *audit.Logger
}

// NewTopicHandler creates a TopicHandler backed by broker.
func NewTopicHandler(b *broker.Broker, a *audit.Logger) *TopicHandler {
	return &TopicHandler{broker: b, audit: a}
}

// Subscribe subscribes a session to topic. The session lookup happens
// first so the handler can distinguish an unknown session (400) from an
// already-subscribed topic (404), per spec §6.
func (h *TopicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "*")

	var req models.SubscribeRequest
	json.NewDecoder(r.Body).Decode(&req)

	sessionID := sessionIDForBody(r, req.SessionID)

	if !h.broker.SessionExists(sessionID) {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventUnknownSession, "subscribe for unknown session")
		writeError(w, http.StatusBadRequest, "session not found")
		return
	}

	if !h.broker.Subscribe(sessionID, topic) {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventSubscriptionDenied, "already subscribed")
		writeError(w, http.StatusNotFound, "already subscribed")
		return
	}

	h.audit.Record(r.Context(), "subscribe", sessionID, topic, "")
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "subscribed"})
}

// Unsubscribe removes a session's subscription to topic.
func (h *TopicHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "*")

	var req models.SubscribeRequest
	json.NewDecoder(r.Body).Decode(&req)

	sessionID := sessionIDForBody(r, req.SessionID)

	if !h.broker.Unsubscribe(sessionID, topic) {
		writeError(w, http.StatusNotFound, "not subscribed")
		return
	}

	h.audit.Record(r.Context(), "unsubscribe", sessionID, topic, "")
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "success"})
}
