// Package playback provides the playback simulator: a single-owner state
// machine that models the appearance of playback over a catalog.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No current track (player hidden)
	StatePlaying              // Track selected and advancing
	StatePaused               // Track selected, not advancing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
