package broker

import (
	"sync"
	"testing"
	"time"
)

func TestRegisterAndReceiveUnknownSession(t *testing.T) {
	b := New()
	if _, ok := b.Receive("nope"); ok {
		t.Fatal("expected Receive to report unknown session")
	}
}

func TestPublishSubscribeReceiveAcknowledge(t *testing.T) {
	b := New()
	b.Register("A")

	if !b.Subscribe("A", "news") {
		t.Fatal("expected first subscribe to succeed")
	}
	if b.Subscribe("A", "news") {
		t.Fatal("expected re-subscribe to be a no-op returning false")
	}

	msg := b.Publish("M1", "news", "hello", 300)

	msgs, ok := b.Receive("A")
	if !ok || len(msgs) != 1 || msgs[0].ID != msg.ID {
		t.Fatalf("expected to receive the published message, got %v ok=%v", msgs, ok)
	}

	if !b.Acknowledge("A", "news", msg.ID) {
		t.Fatal("expected acknowledge to succeed")
	}

	msgs, ok = b.Receive("A")
	if !ok || len(msgs) != 0 {
		t.Fatalf("expected no messages after acknowledge, got %v", msgs)
	}
}

func TestAcknowledgeRejectsUnsubscribedTopic(t *testing.T) {
	b := New()
	b.Register("A")
	msg := b.Publish("M1", "news", "hello", 300)

	if b.Acknowledge("A", "news", msg.ID) {
		t.Fatal("expected acknowledge to fail: session not subscribed")
	}
}

func TestAcknowledgeRejectsUnknownMessage(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")

	if b.Acknowledge("A", "t", "X") {
		t.Fatal("expected acknowledge of unknown message id to fail")
	}
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")
	msg := b.Publish("M1", "t", "hi", 300)

	if !b.Acknowledge("A", "t", msg.ID) {
		t.Fatal("expected first acknowledge to succeed")
	}
	if !b.Acknowledge("A", "t", msg.ID) {
		t.Fatal("expected repeat acknowledge to also report success")
	}
}

func TestUnsubscribeHidesMessages(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")
	b.Publish("M1", "t", "hi", 300)

	if !b.Unsubscribe("A", "t") {
		t.Fatal("expected unsubscribe to succeed")
	}
	if b.Unsubscribe("A", "t") {
		t.Fatal("expected repeat unsubscribe to be a no-op returning false")
	}

	msgs, ok := b.Receive("A")
	if !ok || len(msgs) != 0 {
		t.Fatalf("expected unsubscribed session to receive nothing, got %v", msgs)
	}
}

func TestSessionIsolation(t *testing.T) {
	b := New()
	b.Register("A")
	b.Register("B")
	b.Subscribe("A", "chat/room")
	b.Subscribe("B", "chat/room")

	msg := b.Publish("M1", "chat/room", "hi", 300)

	b.Acknowledge("A", "chat/room", msg.ID)

	msgsA, _ := b.Receive("A")
	msgsB, _ := b.Receive("B")
	if len(msgsA) != 0 {
		t.Fatalf("expected A to have acknowledged the message, got %v", msgsA)
	}
	if len(msgsB) != 1 {
		t.Fatalf("expected B to still see the message, got %v", msgsB)
	}

	b.Acknowledge("B", "chat/room", msg.ID)
	msgsB, _ = b.Receive("B")
	if len(msgsB) != 0 {
		t.Fatalf("expected B to have acknowledged the message, got %v", msgsB)
	}
}

func TestReceiveOrderingNewestFirst(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")

	now := time.Now()
	old := newMessage("old", "t", "1", 300, now.Add(-10*time.Second))
	mid := newMessage("mid", "t", "2", 300, now.Add(-5*time.Second))
	newer := newMessage("new", "t", "3", 300, now)

	b.mu.Lock()
	b.topicMessages["t"] = map[string]*Message{
		old.ID:   old,
		mid.ID:   mid,
		newer.ID: newer,
	}
	b.mu.Unlock()

	msgs, ok := b.Receive("A")
	if !ok || len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %v", msgs)
	}
	if msgs[0].ID != "new" || msgs[1].ID != "mid" || msgs[2].ID != "old" {
		t.Fatalf("expected newest-first ordering, got %v, %v, %v", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}

func TestReceiveOrderingTiebreakByID(t *testing.T) {
	a := newMessage("b", "t", nil, 300, time.Unix(1000, 0))
	b2 := newMessage("a", "t", nil, 300, time.Unix(1000, 0))
	if !less(b2, a) {
		t.Fatal("expected lexicographically smaller id to sort first among equal timestamps")
	}
}

func TestExpireReclaimsMessages(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")
	msg := b.Publish("M1", "t", "hi", 1)

	stats := b.Expire(time.Unix(msg.ExpireTS+2, 0))
	if stats.MessagesExpired != 1 {
		t.Fatalf("expected 1 expired message, got %d", stats.MessagesExpired)
	}

	msgs, ok := b.Receive("A")
	if !ok || len(msgs) != 0 {
		t.Fatalf("expected expired message to be gone, got %v", msgs)
	}
	if got := b.Messages("t"); len(got) != 0 {
		t.Fatalf("expected admin view to also show no messages, got %v", got)
	}
}

func TestExpireCompactsAcknowledgementsByMessageID(t *testing.T) {
	b := New()
	b.Register("A")
	b.Subscribe("A", "t")
	msg := b.Publish("M1", "t", "hi", 1)
	b.Acknowledge("A", "t", msg.ID)

	session := b.sessions["A"]
	if !session.hasAcknowledged(msg.ID) {
		t.Fatal("expected ack recorded before sweep")
	}

	b.Expire(time.Unix(msg.ExpireTS+2, 0))

	if session.hasAcknowledged(msg.ID) {
		t.Fatal("expected sweep to compact the acknowledged-message set by message id")
	}
}

func TestExpireReclaimsIdleSessions(t *testing.T) {
	b := New()
	b.Register("A")
	session := b.sessions["A"]
	session.lastActive = time.Now().Add(-2 * SessionTTL).Unix()

	stats := b.Expire(time.Now())
	if stats.SessionsExpired != 1 {
		t.Fatalf("expected 1 expired session, got %d", stats.SessionsExpired)
	}
	if b.SessionExists("A") {
		t.Fatal("expected idle session to be gone")
	}
}

func TestNegativeTTLUsesCallerSuppliedExpiry(t *testing.T) {
	b := New()
	const neverExpireTTL = 100 * 365 * 24 * 3600
	msg := b.Publish("M1", "t", "hi", neverExpireTTL)
	if msg.ExpireTS != msg.Timestamp+neverExpireTTL {
		t.Fatalf("expected expire_ts = timestamp + ttl, got %d vs %d", msg.ExpireTS, msg.Timestamp+neverExpireTTL)
	}
}

func TestConcurrentPublishAndReceive(t *testing.T) {
	b := New()
	const sessions = 10
	for i := 0; i < sessions; i++ {
		id := sessionName(i)
		b.Register(id)
		b.Subscribe(id, "load")
	}

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Publish(sessionName(n)+"-msg", "load", n, 3600)
		}(i)
	}
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Receive(sessionName(n % sessions))
		}(i)
	}
	wg.Wait()

	for i := 0; i < sessions; i++ {
		id := sessionName(i)
		msgs, ok := b.Receive(id)
		if !ok {
			t.Fatalf("expected session %s to still exist", id)
		}
		for _, m := range msgs {
			if !b.Acknowledge(id, "load", m.ID) {
				t.Fatalf("expected acknowledge to succeed for %s/%s", id, m.ID)
			}
		}
	}

	for i := 0; i < sessions; i++ {
		id := sessionName(i)
		msgs, _ := b.Receive(id)
		if len(msgs) != 0 {
			t.Fatalf("expected session %s to have drained its view, got %d left", id, len(msgs))
		}
	}
}

func sessionName(n int) string {
	const letters = "abcdefghij"
	return "sess-" + string(letters[n%len(letters)])
}
