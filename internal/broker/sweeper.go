package broker

import "time"

// SessionTTL is the idle duration after which a session is evicted by
// Expire (spec §4.4 step 1; 3600s in the reference).
const SessionTTL = 3600 * time.Second

// ExpiryStats reports what a single Expire pass reclaimed, so callers
// (the HTTP facade, the audit trail) can log sweep activity without
// re-walking broker state themselves.
type ExpiryStats struct {
	SessionsExpired int
	MessagesExpired int
}

// Expire reconciles the three TTL clocks against now: idle sessions past
// SessionTTL are removed entirely (discarding their subscriptions and
// acknowledgement sets); messages whose expire_ts has passed are removed
// from their topic; and every surviving session has the just-removed
// message ids pruned from its acknowledged-messages set.
//
// The reference implementation's compaction step collects expired
// *topic names* and diffs sessions' acknowledged-message sets (which
// hold message ids) against them — a bug that never actually compacts
// anything (spec §9 OQ1). This implementation compacts by message id,
// the set actually evicted in step 2.
func (b *Broker) Expire(now time.Time) ExpiryStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stats ExpiryStats

	for id, session := range b.sessions {
		if now.Unix()-session.lastActive > int64(SessionTTL.Seconds()) {
			delete(b.sessions, id)
			stats.SessionsExpired++
		}
	}

	// Topic entries are never pruned here, even once emptied — a topic
	// that has seen at least one publish stays visible to get_topics()
	// for the lifetime of the broker, matching the reference.
	expiredIDs := make(map[string]struct{})
	for _, msgs := range b.topicMessages {
		for id, msg := range msgs {
			if msg.expired(now) {
				delete(msgs, id)
				expiredIDs[id] = struct{}{}
				stats.MessagesExpired++
			}
		}
	}

	if len(expiredIDs) > 0 {
		for _, session := range b.sessions {
			session.compact(expiredIDs)
		}
	}

	return stats
}
