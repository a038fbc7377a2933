package broker

import (
	"sort"
	"sync"
	"time"
)

// Broker is the single authoritative in-memory store coordinating
// sessions and per-topic message sets. A single mutex guards both maps;
// every operation below acquires it for its full duration and never
// performs I/O while holding it (spec §5).
type Broker struct {
	mu            sync.Mutex
	sessions      map[string]*Session
	topicMessages map[string]map[string]*Message
}

// New creates a ready-to-use, empty Broker.
func New() *Broker {
	return &Broker{
		sessions:      make(map[string]*Session),
		topicMessages: make(map[string]map[string]*Message),
	}
}

// Register installs a new Session under id, replacing any existing
// session with the same id (no acknowledgement history is retained
// across a re-registration). Returns id.
func (b *Broker) Register(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[id] = newSession(id, time.Now())
	return id
}

// Publish constructs a new Message under topic with the caller-supplied
// id and the current timestamp, and inserts it into the topic's message
// set. A
// topic with no prior entries is created implicitly. Never fails.
func (b *Broker) Publish(id, topic string, data any, ttl int64) *Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := newMessage(id, topic, data, ttl, time.Now())
	if b.topicMessages[topic] == nil {
		b.topicMessages[topic] = make(map[string]*Message)
	}
	b.topicMessages[topic][msg.ID] = msg
	return msg
}

// Subscribe returns true if sessionID exists and topic was newly added
// to its subscription set; false if the session is unknown or the topic
// was already subscribed.
func (b *Broker) Subscribe(sessionID, topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return false
	}
	added := session.subscribe(topic)
	session.touch(time.Now())
	return added
}

// Unsubscribe returns true on a real removal; false if the session is
// unknown or was not subscribed to topic.
func (b *Broker) Unsubscribe(sessionID, topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return false
	}
	removed := session.unsubscribe(topic)
	session.touch(time.Now())
	return removed
}

// Acknowledge is accepted only if the session exists, is currently
// subscribed to topic, and the message still exists under that topic.
// On success it adds sessionID to the message's acknowledged-by set and
// messageID to the session's acknowledged-messages set.
func (b *Broker) Acknowledge(sessionID, topic, messageID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return false
	}
	if _, ok := b.topicMessages[topic][messageID]; !ok {
		return false
	}
	if !session.acknowledge(topic, messageID) {
		return false
	}
	b.topicMessages[topic][messageID].acknowledge(sessionID)
	session.touch(time.Now())
	return true
}

// SessionExists reports whether sessionID currently has a live session.
func (b *Broker) SessionExists(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.sessions[sessionID]
	return ok
}

// SessionTopics returns the topics sessionID is subscribed to, and
// whether the session exists at all.
func (b *Broker) SessionTopics(sessionID string) ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return session.Topics(), true
}

// Receive returns every message such that the session exists, its topic
// is in the session's subscribed_topics, and its id has not been
// acknowledged by the session. Results are sorted newest-published-first
// with message id as a deterministic tiebreaker. The second return value
// is false if the session does not exist.
func (b *Broker) Receive(sessionID string) ([]*Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	session, ok := b.sessions[sessionID]
	if !ok {
		return nil, false
	}

	var out []*Message
	for topic := range session.subscribedTopics {
		for id, msg := range b.topicMessages[topic] {
			if session.hasAcknowledged(id) {
				continue
			}
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	session.touch(time.Now())
	return out, true
}

// Topics returns every topic currently present in the broker, in
// unspecified order.
func (b *Broker) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.topicMessages))
	for t := range b.topicMessages {
		out = append(out, t)
	}
	return out
}

// Messages returns all messages under topic, newest-first by publish
// time. Used by admin endpoints only.
func (b *Broker) Messages(topic string) []*Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := b.topicMessages[topic]
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// SessionSnapshot describes a session for the admin surface.
type SessionSnapshot struct {
	ID         string
	TopicCount int
	LastActive time.Time
}

// Sessions returns a snapshot of every live session, for the admin
// surface only.
func (b *Broker) Sessions() []SessionSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]SessionSnapshot, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, SessionSnapshot{
			ID:         s.ID,
			TopicCount: len(s.subscribedTopics),
			LastActive: time.Unix(s.lastActive, 0),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
