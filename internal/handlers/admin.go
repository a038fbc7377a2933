// Package handlers contains the HTTP facade: request/response translation
// between JSON-over-HTTP and broker operations (spec §4.5, §6).
package handlers

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/models"
)

// AdminHandler handles the read-only admin surface: topic listing,
// per-topic message inspection, live session inspection, and the
// peripheral audit trail. Every route here is gated by
// middleware.AdminOnlyMiddleware.
type AdminHandler struct {
	broker *broker.Broker
	audit  *audit.Logger
}

// NewAdminHandler creates an AdminHandler backed by broker and audit.
func NewAdminHandler(b *broker.Broker, a *audit.Logger) *AdminHandler {
	return &AdminHandler{broker: b, audit: a}
}

// Topics returns every topic currently present in the broker.
func (h *AdminHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics := h.broker.Topics()
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, models.TopicsResponse{Topics: topics})
}

// Messages returns every message currently held under a topic,
// including acknowledgement state.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "*")

	msgs := h.broker.Messages(topic)
	dtos := make([]models.AdminMessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = toAdminMessageDTO(m)
	}
	writeJSON(w, http.StatusOK, models.AdminMessagesResponse{Messages: dtos})
}

// Sessions returns a snapshot of every live session, with a
// human-readable idle duration for at-a-glance operator inspection.
func (h *AdminHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	snapshots := h.broker.Sessions()

	dtos := make([]models.AdminSessionDTO, len(snapshots))
	for i, s := range snapshots {
		dtos[i] = models.AdminSessionDTO{
			SessionID:  s.ID,
			TopicCount: s.TopicCount,
			IdleFor:    humanize.RelTime(s.LastActive, now, "", "idle"),
		}
	}
	writeJSON(w, http.StatusOK, models.AdminSessionsResponse{Sessions: dtos})
}

// Audit returns the most recent entries of the peripheral audit trail.
// Empty when the audit trail is disabled.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	events, err := h.audit.Recent(r.Context(), 100)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to read audit trail", err)
		return
	}

	dtos := make([]models.AdminAuditEventDTO, len(events))
	for i, e := range events {
		dtos[i] = models.AdminAuditEventDTO{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Event:     e.Event,
			SessionID: e.SessionID,
			Topic:     e.Topic,
			MessageID: e.MessageID,
		}
	}
	writeJSON(w, http.StatusOK, models.AdminAuditResponse{Events: dtos})
}
