package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted  EventType = iota // A track was selected and started
	EventStateChanged                   // Play/pause toggled
	EventProgress                       // One tick advanced the elapsed counter
	EventSeeked                         // Elapsed counter set directly
	EventVolumeChanged                  // Volume changed
	EventTrackEnded                     // Track reached its duration and stopped
	EventClosed                         // Player closed, state discarded
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventProgress:
		return "progress"
	case EventSeeked:
		return "seeked"
	case EventVolumeChanged:
		return "volume_changed"
	case EventTrackEnded:
		return "track_ended"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Snapshot Snapshot // State right after the change
}
