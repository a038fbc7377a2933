// Package broker implements the in-memory, topic-scoped publish/subscribe
// state machine: sessions, subscriptions, topics, messages, and the
// per-session acknowledgement bookkeeping that together give at-least-once
// delivery semantics.
package broker

import "time"

// Message is an immutable-after-publish descriptor of one published item,
// plus mutable acknowledgement bookkeeping. Equality and hashing of a
// Message are defined solely by ID.
type Message struct {
	ID        string
	Topic     string
	Data      any
	Timestamp int64
	TTL       int64
	ExpireTS  int64

	// acknowledgedBy is the set of session ids that have acknowledged
	// this message. Mutated only under the owning Broker's lock.
	acknowledgedBy map[string]struct{}
}

// newMessage constructs a Message with the given id, timestamped at now.
// A negative ttl is not resolved here — callers (the HTTP
// facade) are responsible for replacing it with the configured
// never-expire sentinel before calling Broker.Publish.
func newMessage(id, topic string, data any, ttl int64, now time.Time) *Message {
	ts := now.Unix()
	return &Message{
		ID:             id,
		Topic:          topic,
		Data:           data,
		Timestamp:      ts,
		TTL:            ttl,
		ExpireTS:       ts + ttl,
		acknowledgedBy: make(map[string]struct{}),
	}
}

// acknowledge records that sessionID has acknowledged this message.
// Idempotent.
func (m *Message) acknowledge(sessionID string) {
	m.acknowledgedBy[sessionID] = struct{}{}
}

// AcknowledgedBy returns a snapshot of the session ids that have
// acknowledged this message, safe to use after the broker lock is
// released.
func (m *Message) AcknowledgedBy() []string {
	out := make([]string, 0, len(m.acknowledgedBy))
	for id := range m.acknowledgedBy {
		out = append(out, id)
	}
	return out
}

// expired reports whether the message's TTL has elapsed as of now.
func (m *Message) expired(now time.Time) bool {
	return now.Unix() > m.ExpireTS
}

// less orders messages newest-published-first, with message id as a
// deterministic tiebreaker for equal timestamps (spec §4.2/§4.3).
func less(a, b *Message) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID < b.ID
}
