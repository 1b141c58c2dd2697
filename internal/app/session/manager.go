// Package session provides the visitor session manager. Each session owns
// one playback simulator; its state is discarded when the session ends.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bandplayer/internal/app/notification"
	"github.com/osa030/bandplayer/internal/app/playback"
	"github.com/osa030/bandplayer/internal/domain/catalog"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrManagerClosed   = errors.New("session manager is closed")
)

// Config holds session manager configuration.
type Config struct {
	Playback      playback.Config
	IdleTimeout   time.Duration // Sessions idle longer than this are ended (0 disables)
	SweepInterval time.Duration // How often idle sessions are swept
	MaxSessions   int           // Maximum concurrent sessions (0 means unlimited)
}

// Session is one visitor's player.
type Session struct {
	ID       string
	OpenedAt time.Time

	player   *playback.Simulator
	lastSeen time.Time // guarded by Manager.mu
	done     chan struct{}
}

// Player returns the session's playback simulator.
func (s *Session) Player() *playback.Simulator {
	return s.player
}

// Done is closed once the session has ended and its last notification
// has been published.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Info is a point-in-time description of a session.
type Info struct {
	ID         string
	OpenedAt   time.Time
	LastSeenAt time.Time
	Snapshot   playback.Snapshot
}

// Manager manages visitor sessions with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	catalog      *catalog.Catalog
	config       Config
	sessions     map[string]*Session
	notification *notification.Manager
	closed       bool

	now func() time.Time
	wg  sync.WaitGroup
}

// NewManager creates a new session manager over a shared catalog.
func NewManager(cat *catalog.Catalog, cfg Config, notif *notification.Manager) *Manager {
	if notif == nil {
		notif = notification.NewManager()
	}
	return &Manager{
		catalog:      cat,
		config:       cfg,
		sessions:     make(map[string]*Session),
		notification: notif,
		now:          time.Now,
	}
}

// Catalog returns the shared catalog.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// Open creates a session with a fresh, empty player.
func (m *Manager) Open() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return nil, errors.Wrapf(ErrTooManySessions, "limit %d", m.config.MaxSessions)
	}

	now := m.now()
	s := &Session{
		ID:       uuid.New().String(),
		OpenedAt: now,
		player:   playback.NewSimulator(m.catalog, m.config.Playback),
		lastSeen: now,
		done:     make(chan struct{}),
	}
	m.sessions[s.ID] = s

	m.wg.Add(1)
	go m.forwardEvents(s)

	zlog.Info().Msgf("session opened: session_id=%s active=%d", s.ID, len(m.sessions))
	return s, nil
}

// Get returns the session and marks it as active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "session_id=%s", id)
	}
	s.lastSeen = m.now()
	return s, nil
}

// End ends a session. Its player is shut down and its state discarded.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrSessionNotFound, "session_id=%s", id)
	}

	s.player.Shutdown()
	zlog.Info().Msgf("session ended: session_id=%s", id)
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns information about all sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	lastSeen := make(map[string]time.Time, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
		lastSeen[s.ID] = s.lastSeen
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, Info{
			ID:         s.ID,
			OpenedAt:   s.OpenedAt,
			LastSeenAt: lastSeen[s.ID],
			Snapshot:   s.player.Snapshot(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].OpenedAt.Before(infos[j].OpenedAt)
	})
	return infos
}

// Sweep ends sessions idle for longer than the idle timeout and returns
// how many were ended.
func (m *Manager) Sweep() int {
	if m.config.IdleTimeout <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.config.IdleTimeout)

	m.mu.RLock()
	var idle []string
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	ended := 0
	for _, id := range idle {
		if err := m.End(id); err == nil {
			ended++
		}
	}
	if ended > 0 {
		zlog.Info().Msgf("idle sessions swept: count=%d", ended)
	}
	return ended
}

// Run sweeps idle sessions periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.config.IdleTimeout <= 0 || m.config.SweepInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close ends all sessions and waits for their notifications to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.End(id)
	}
	m.wg.Wait()
	m.notification.Close()
}

// forwardEvents publishes a session's playback events until its player is
// shut down, then publishes the session end.
func (m *Manager) forwardEvents(s *Session) {
	defer m.wg.Done()
	defer close(s.done)

	for event := range s.player.Events() {
		m.handlePlaybackEvent(s, event)
	}

	m.notification.Publish(&notification.Notification{
		SessionID: s.ID,
		Type:      notification.TypeSessionEnded,
	})
	m.notification.UnsubscribeSession(s.ID)
}

// handlePlaybackEvent handles playback events.
func (m *Manager) handlePlaybackEvent(s *Session, event playback.Event) {
	switch event.Type {
	case playback.EventProgress:
		// Once per second per session; too noisy for info.
	case playback.EventTrackStarted, playback.EventTrackEnded:
		if t := event.Snapshot.Track; t != nil {
			zlog.Info().Msgf("playback event: session_id=%s type=%s track_id=%s title=%s",
				s.ID, event.Type, t.ID, t.Title)
		}
	default:
		zlog.Debug().Msgf("playback event: session_id=%s type=%s state=%s",
			s.ID, event.Type, event.Snapshot.State)
	}

	m.notification.Publish(&notification.Notification{
		SessionID: s.ID,
		Type:      notification.TypeChange,
		Event:     event.Type,
		Snapshot:  event.Snapshot,
	})
}
