package handlers

import (
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/models"
)

// toMessageDTO projects a broker.Message to the public wire shape (spec
// §6): id, topic, data, timestamp, ttl. Acknowledgement state never
// leaves the broker through this projection.
func toMessageDTO(m *broker.Message) models.MessageDTO {
	return models.MessageDTO{
		MessageID: m.ID,
		Topic:     m.Topic,
		Data:      m.Data,
		Timestamp: m.Timestamp,
		TTL:       m.TTL,
	}
}

// toAdminMessageDTO projects a broker.Message to the admin wire shape,
// additionally exposing expire_ts and the acknowledging session ids.
func toAdminMessageDTO(m *broker.Message) models.AdminMessageDTO {
	acked := m.AcknowledgedBy()
	if acked == nil {
		acked = []string{}
	}
	return models.AdminMessageDTO{
		MessageDTO:          toMessageDTO(m),
		ExpireTS:            m.ExpireTS,
		ClientsAcknowledged: acked,
	}
}
