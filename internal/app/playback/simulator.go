package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bandplayer/internal/domain/catalog"
	"github.com/osa030/bandplayer/internal/domain/track"
)

// Errors
var (
	ErrNotInCatalog = errors.New("track is not in the catalog")
)

const (
	DefaultTickInterval  = time.Second
	DefaultInitialVolume = 0.7
	DefaultEventBuffer   = 64
)

// TickerFactory starts a periodic tick source and returns its channel and a
// stop function. The stop function must be safe to call more than once.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

// WallClockTicker is the default TickerFactory backed by time.Ticker.
func WallClockTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Config holds simulator configuration.
type Config struct {
	TickInterval  time.Duration // Time between ticks (one simulated second)
	InitialVolume float64       // Volume for a fresh or closed player
	EventBuffer   int           // Event channel capacity
	Ticker        TickerFactory // Tick source, WallClockTicker if nil
}

// DefaultConfig returns the configuration used by the site player.
func DefaultConfig() Config {
	return Config{
		TickInterval:  DefaultTickInterval,
		InitialVolume: DefaultInitialVolume,
		EventBuffer:   DefaultEventBuffer,
		Ticker:        WallClockTicker,
	}
}

// Simulator maintains the playback state for one consumer. Every command and
// every tick runs under mu, so commands are applied in a single serial order.
type Simulator struct {
	mu sync.Mutex

	catalog *catalog.Catalog

	// Playback state
	current *track.Track
	index   int
	playing bool
	elapsed int
	volume  float64

	// Tick source. At most one is active, only while current != nil && playing.
	tickCancel func()
	tickGen    uint64

	config Config

	// Events
	eventCh chan Event

	// Context
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewSimulator creates a simulator over the given catalog with no current track.
func NewSimulator(cat *catalog.Catalog, config Config) *Simulator {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	config.InitialVolume = clampVolume(config.InitialVolume)
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	if config.Ticker == nil {
		config.Ticker = WallClockTicker
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		catalog: cat,
		volume:  config.InitialVolume,
		config:  config,
		eventCh: make(chan Event, config.EventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel. It is closed by Shutdown.
func (s *Simulator) Events() <-chan Event {
	return s.eventCh
}

// Catalog returns the catalog the simulator plays from.
func (s *Simulator) Catalog() *catalog.Catalog {
	return s.catalog
}

// SelectTrack makes t the current track, resets elapsed to 0 and starts playing.
func (s *Simulator) SelectTrack(t track.Track) error {
	return s.SelectByID(t.ID)
}

// SelectByID selects the catalog track with the given ID.
func (s *Simulator) SelectByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.catalog.IndexOf(id)
	if !ok {
		return errors.Wrapf(ErrNotInCatalog, "track id %q", id)
	}
	s.selectLocked(idx)
	return nil
}

// PlayAll selects the first track of the catalog.
func (s *Simulator) PlayAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectLocked(0)
}

// TogglePlayPause flips between playing and paused. No-op without a track.
func (s *Simulator) TogglePlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	s.playing = !s.playing
	s.syncTickerLocked()
	s.sendEventLocked(EventStateChanged)
}

// Seek sets the elapsed counter, clamped to [0, duration]. It does not change
// whether the player is playing. No-op without a track.
func (s *Simulator) Seek(toSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	switch {
	case toSeconds < 0:
		toSeconds = 0
	case toSeconds > s.current.DurationSeconds:
		toSeconds = s.current.DurationSeconds
	}
	s.elapsed = toSeconds
	s.sendEventLocked(EventSeeked)
}

// Next selects the following catalog track, wrapping to the first.
// No-op without a track.
func (s *Simulator) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.selectLocked(s.catalog.NextIndex(s.index))
}

// Previous selects the preceding catalog track, wrapping to the last.
// No-op without a track.
func (s *Simulator) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.selectLocked(s.catalog.PreviousIndex(s.index))
}

// SetVolume stores the volume clamped to [0, 1]. There is no audio output.
func (s *Simulator) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = clampVolume(v)
	s.sendEventLocked(EventVolumeChanged)
}

// Close hides the player. Track, elapsed, playing and volume are reset.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.sendEventLocked(EventClosed)
}

// Tick advances playback by one simulated second. When elapsed reaches the
// track duration, playback stops and elapsed returns to 0 in the same step.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickLocked()
}

// Snapshot returns the current state projection.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// FormatElapsed returns the elapsed time as "m:ss".
func (s *Simulator) FormatElapsed() string {
	return s.Snapshot().ElapsedText()
}

// ProgressFraction returns elapsed/duration, 0 with no track.
func (s *Simulator) ProgressFraction() float64 {
	return s.Snapshot().ProgressFraction()
}

// Shutdown stops the tick source and closes the event channel.
// The simulator must not be used afterwards.
func (s *Simulator) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopTickerLocked()
	s.closed = true
	s.cancel()
	close(s.eventCh)
}

// selectLocked makes the catalog track at idx current and starts it.
// Must be called with lock held.
func (s *Simulator) selectLocked(idx int) {
	t, _ := s.catalog.At(idx)

	s.current = &t
	s.index = idx
	s.elapsed = 0
	s.playing = true

	// The previous handle is stopped before the new one starts.
	s.stopTickerLocked()
	s.syncTickerLocked()

	zlog.Debug().Msgf("playback: track selected: id=%s title=%s duration=%s",
		t.ID, t.Title, t.Duration)

	s.sendEventLocked(EventTrackStarted)
}

func (s *Simulator) tickLocked() {
	if s.current == nil || !s.playing {
		return
	}

	s.elapsed++
	if s.elapsed >= s.current.DurationSeconds {
		zlog.Debug().Msgf("playback: track ended: id=%s title=%s", s.current.ID, s.current.Title)
		s.elapsed = 0
		s.playing = false
		s.stopTickerLocked()
		s.sendEventLocked(EventTrackEnded)
		return
	}
	s.sendEventLocked(EventProgress)
}

// onTick is called by the tick goroutine. Ticks from a handle that has
// since been replaced or stopped are dropped.
func (s *Simulator) onTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tickCancel == nil || gen != s.tickGen {
		return
	}
	s.tickLocked()
}

func (s *Simulator) resetLocked() {
	s.stopTickerLocked()
	s.current = nil
	s.index = 0
	s.playing = false
	s.elapsed = 0
	s.volume = s.config.InitialVolume
}

func (s *Simulator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:  StateIdle,
		Volume: s.volume,
	}
	if s.current == nil {
		return snap
	}

	t := *s.current
	snap.Track = &t
	snap.Elapsed = s.elapsed
	if s.playing {
		snap.State = StatePlaying
	} else {
		snap.State = StatePaused
	}
	return snap
}

// syncTickerLocked starts or stops the tick source so that one is active
// exactly while a track is current and playing.
// Must be called with lock held.
func (s *Simulator) syncTickerLocked() {
	shouldRun := s.current != nil && s.playing && !s.closed
	switch {
	case shouldRun && s.tickCancel == nil:
		s.startTickerLocked()
	case !shouldRun && s.tickCancel != nil:
		s.stopTickerLocked()
	}
}

// startTickerLocked starts a new tick source owned by the simulator.
// Must be called with lock held and no active tick source.
func (s *Simulator) startTickerLocked() {
	s.tickGen++
	gen := s.tickGen

	ticks, stop := s.config.Ticker(s.config.TickInterval)
	ctx, cancel := context.WithCancel(s.ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				s.onTick(gen)
			}
		}
	}()

	s.tickCancel = func() {
		cancel()
		stop()
	}
}

// stopTickerLocked cancels the active tick source, if any.
// Must be called with lock held.
func (s *Simulator) stopTickerLocked() {
	if s.tickCancel != nil {
		s.tickCancel()
		s.tickCancel = nil
	}
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (s *Simulator) sendEventLocked(t EventType) {
	if s.closed {
		return
	}
	select {
	case s.eventCh <- Event{Type: t, Snapshot: s.snapshotLocked()}:
	default:
		// Channel full, drop event
	}
}

func clampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
