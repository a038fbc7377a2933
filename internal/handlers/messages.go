package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/config"
	"github.com/dingwen07/httpmq/internal/ids"
	"github.com/dingwen07/httpmq/internal/models"
)

// MessageHandler handles publish and acknowledge.
type MessageHandler struct {
	broker *broker.Broker
	audit  *audit.Logger
	cfg    *config.Config
}

// NewMessageHandler creates a MessageHandler backed by broker and cfg.
func NewMessageHandler(b *broker.Broker, a *audit.Logger, cfg *config.Config) *MessageHandler {
	return &MessageHandler{broker: b, audit: a, cfg: cfg}
}

// Publish inserts a new message under topic. ttl accepts an integer, a
// digit-only string, or may be omitted entirely (spec §4.5): a negative
// value is replaced with the never-expire sentinel, a missing value
// falls back to the configured default.
func (h *MessageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "*")

	var req models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ttl := h.resolveTTL(req.TTL)

	msg := h.broker.Publish(ids.New(), topic, req.Data, ttl)

	h.audit.Record(r.Context(), "publish", "", topic, msg.ID)
	writeJSON(w, http.StatusOK, models.PublishResponse{
		Status:    "success",
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	})
}

// resolveTTL applies the ttl parsing rules of spec §4.5 to the raw JSON
// value decoded from the request body.
func (h *MessageHandler) resolveTTL(raw any) int64 {
	var ttl int64
	switch v := raw.(type) {
	case nil:
		return h.cfg.DefaultTTL
	case float64:
		ttl = int64(v)
	case string:
		if !isDigitsOnly(v) {
			return h.cfg.DefaultTTL
		}
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return h.cfg.DefaultTTL
		}
		ttl = parsed
	default:
		return h.cfg.DefaultTTL
	}

	if ttl < 0 {
		return h.cfg.NeverExpireTTL
	}
	return ttl
}

// isDigitsOnly reports whether s is composed solely of ASCII digits,
// matching Python's str.isdigit() as used by the original reference
// (original_source/httpmq/server.py) to validate a string ttl — a
// leading sign is rejected, so "-5" falls back to DefaultTTL rather
// than being treated as a negative (never-expire) value.
func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Acknowledge marks a message as acknowledged by a session.
func (h *MessageHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	var req models.AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := sessionIDForBody(r, req.SessionID)
	if sessionID == "" || req.Topic == "" || req.MessageID == "" {
		writeError(w, http.StatusBadRequest, "session_id, topic, and message_id are required")
		return
	}

	if !h.broker.Acknowledge(sessionID, req.Topic, req.MessageID) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	h.audit.Record(r.Context(), "acknowledge", sessionID, req.Topic, req.MessageID)
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "success"})
}
