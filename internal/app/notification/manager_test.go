package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bandplayer/internal/app/playback"
)

type recordingStream struct {
	mu   sync.Mutex
	got  []*Notification
	wait time.Duration
}

func (r *recordingStream) Send(n *Notification) error {
	if r.wait > 0 {
		time.Sleep(r.wait)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingStream) Received() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Notification(nil), r.got...)
}

func TestManager_PublishOnlyToSession(t *testing.T) {
	m := NewManager()
	a := &recordingStream{}
	b := &recordingStream{}
	m.Subscribe("session-a", a)
	m.Subscribe("session-b", b)

	m.Publish(&Notification{SessionID: "session-a", Type: TypeChange, Event: playback.EventProgress})

	require.Len(t, a.Received(), 1)
	assert.Empty(t, b.Received())
	assert.Equal(t, playback.EventProgress, a.Received()[0].Event)
}

func TestManager_SequenceNumbersIncrease(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	m.Subscribe("session", s)

	for i := 0; i < 3; i++ {
		m.Publish(&Notification{SessionID: "session", Type: TypeChange})
	}

	got := s.Received()
	require.Len(t, got, 3)
	assert.Less(t, got[0].SequenceNo, got[1].SequenceNo)
	assert.Less(t, got[1].SequenceNo, got[2].SequenceNo)
	assert.Greater(t, m.NextSequenceNo(), got[2].SequenceNo)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe("session", s)
	other := m.Subscribe("other", &recordingStream{})
	assert.Equal(t, 2, m.SubscriberCount())

	m.Unsubscribe(id)
	m.Publish(&Notification{SessionID: "session"})
	assert.Empty(t, s.Received())
	assert.Equal(t, 1, m.SubscriberCount())

	m.UnsubscribeSession("other")
	assert.Equal(t, 0, m.SubscriberCount())
	assert.NoError(t, m.Send(other, &Notification{}))
}

func TestManager_SlowSubscriberTimesOut(t *testing.T) {
	m := NewManager()
	m.sendTimeout = 10 * time.Millisecond
	m.Subscribe("session", &recordingStream{wait: 200 * time.Millisecond})
	fast := &recordingStream{}
	m.Subscribe("session", fast)

	start := time.Now()
	m.Publish(&Notification{SessionID: "session"})
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	assert.Len(t, fast.Received(), 1)
}

func TestManager_Send(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe("session", s)

	require.NoError(t, m.Send(id, &Notification{Type: TypeInitialState}))
	require.Len(t, s.Received(), 1)
	assert.Equal(t, TypeInitialState, s.Received()[0].Type)

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "initial_state", TypeInitialState.String())
	assert.Equal(t, "change", TypeChange.String())
	assert.Equal(t, "session_ended", TypeSessionEnded.String())
	assert.Equal(t, "unknown", Type(42).String())
}
