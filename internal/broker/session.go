package broker

import "time"

// Session is per-client state: the topics it has subscribed to, the
// message ids it has acknowledged, and when it was last active. All
// mutation happens through the methods below; none of them touch the
// owning Broker's topic map.
type Session struct {
	ID                string
	subscribedTopics  map[string]struct{}
	acknowledgedMsgs  map[string]struct{}
	lastActive        int64
}

// newSession creates a Session with empty subscription and
// acknowledgement sets.
func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:               id,
		subscribedTopics: make(map[string]struct{}),
		acknowledgedMsgs: make(map[string]struct{}),
		lastActive:       now.Unix(),
	}
}

// touch refreshes last_active to now. Spec §9 OQ3: Publish never calls
// this because it isn't a session-scoped operation; only Subscribe,
// Unsubscribe, Acknowledge, and Receive do.
func (s *Session) touch(now time.Time) {
	s.lastActive = now.Unix()
}

// LastActive returns the unix timestamp of the session's last activity.
func (s *Session) LastActive() int64 {
	return s.lastActive
}

// Topics returns a snapshot of the session's subscribed topics.
func (s *Session) Topics() []string {
	out := make([]string, 0, len(s.subscribedTopics))
	for t := range s.subscribedTopics {
		out = append(out, t)
	}
	return out
}

// isSubscribed reports whether the session is currently subscribed to topic.
func (s *Session) isSubscribed(topic string) bool {
	_, ok := s.subscribedTopics[topic]
	return ok
}

// hasAcknowledged reports whether the session has already acknowledged
// the given message id.
func (s *Session) hasAcknowledged(messageID string) bool {
	_, ok := s.acknowledgedMsgs[messageID]
	return ok
}

// subscribe adds topic to the session's subscription set. Returns false
// if the topic was already subscribed (no-op).
func (s *Session) subscribe(topic string) bool {
	if s.isSubscribed(topic) {
		return false
	}
	s.subscribedTopics[topic] = struct{}{}
	return true
}

// unsubscribe removes topic from the session's subscription set. Returns
// false if the session was not subscribed (no-op). Per spec §9 OQ2, this
// deliberately does not prune the session's acknowledged-message set for
// messages under topic — those acknowledgements are harmless until the
// messages themselves expire and are swept.
func (s *Session) unsubscribe(topic string) bool {
	if !s.isSubscribed(topic) {
		return false
	}
	delete(s.subscribedTopics, topic)
	return true
}

// acknowledge records that the session has acknowledged messageID under
// topic. Rejected if the session is not subscribed to topic. Idempotent.
func (s *Session) acknowledge(topic, messageID string) bool {
	if !s.isSubscribed(topic) {
		return false
	}
	s.acknowledgedMsgs[messageID] = struct{}{}
	return true
}

// compact removes ids from the session's acknowledged-message set. Used
// by the sweeper when messages are evicted, so the set does not grow
// unboundedly as topics churn (spec §4.4 step 3).
func (s *Session) compact(ids map[string]struct{}) {
	for id := range ids {
		delete(s.acknowledgedMsgs, id)
	}
}
