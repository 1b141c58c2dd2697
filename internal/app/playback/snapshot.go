package playback

import "github.com/osa030/bandplayer/internal/domain/track"

// Snapshot is a read-only projection of the playback state for rendering.
// Derived values are computed from it rather than stored.
type Snapshot struct {
	Track   *track.Track // nil when no track is current
	State   State
	Elapsed int     // Elapsed seconds, 0 when Track is nil
	Volume  float64 // 0.0 - 1.0
}

// HasTrack returns true if a track is current.
func (s Snapshot) HasTrack() bool {
	return s.Track != nil
}

// IsPlaying returns true if the elapsed counter is advancing.
func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}

// ElapsedText returns the elapsed time as "m:ss".
func (s Snapshot) ElapsedText() string {
	return track.FormatSeconds(s.Elapsed)
}

// DurationText returns the current track's formatted duration, or "0:00".
func (s Snapshot) DurationText() string {
	if s.Track == nil {
		return track.FormatSeconds(0)
	}
	return track.FormatSeconds(s.Track.DurationSeconds)
}

// ProgressFraction returns elapsed/duration, or 0 with no track or a
// zero-length track.
func (s Snapshot) ProgressFraction() float64 {
	if s.Track == nil || s.Track.DurationSeconds <= 0 {
		return 0
	}
	return float64(s.Elapsed) / float64(s.Track.DurationSeconds)
}
