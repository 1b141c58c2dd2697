// Package notification provides the notification manager for fanning out
// playback changes to the subscribers of a session.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osa030/bandplayer/internal/app/playback"
)

// Type represents a notification type.
type Type int

const (
	TypeInitialState Type = iota // Current state sent on subscribe
	TypeChange                   // Playback state changed
	TypeSessionEnded             // Session was ended, no further notifications
)

// String returns the string representation of the notification type.
func (t Type) String() string {
	switch t {
	case TypeInitialState:
		return "initial_state"
	case TypeChange:
		return "change"
	case TypeSessionEnded:
		return "session_ended"
	default:
		return "unknown"
	}
}

// Notification is a change delivered to a session's subscribers.
type Notification struct {
	SessionID  string
	SequenceNo uint64
	Type       Type
	Event      playback.EventType // Set for TypeChange
	Snapshot   playback.Snapshot
}

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*Notification) error
}

// subscription represents a subscriber's subscription to one session.
type subscription struct {
	id        string
	sessionID string
	stream    Stream
}

// Manager manages notification subscriptions and publishing.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   500 * time.Millisecond,
	}
}

// Subscribe adds a subscription to a session and returns the subscription ID.
func (m *Manager) Subscribe(sessionID string, stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:        id,
		sessionID: sessionID,
		stream:    stream,
	}
	return id
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// UnsubscribeSession removes every subscription to a session.
func (m *Manager) UnsubscribeSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sub := range m.subscriptions {
		if sub.sessionID == sessionID {
			delete(m.subscriptions, id)
		}
	}
}

// Publish stamps the notification with a sequence number and sends it to
// every subscriber of its session. Each send has a timeout so one slow
// subscriber cannot block the others.
func (m *Manager) Publish(n *Notification) {
	n.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		if sub.sessionID == n.SessionID {
			subs = append(subs, sub)
		}
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.stream.Send(n)
			}()

			select {
			case <-done:
			case <-ctx.Done():
			}
		}(sub)
	}
	wg.Wait()
}

// Send sends a notification to a specific subscriber.
func (m *Manager) Send(subscriptionID string, n *Notification) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil
	}

	return sub.stream.Send(n)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
