// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Track represents a catalog item that can be played by the simulator.
// DurationSeconds is the source of truth; Duration is its display text.
type Track struct {
	ID              string // Unique within a catalog
	Title           string // Display title
	Duration        string // Formatted duration (m:ss)
	DurationSeconds int    // Total duration in whole seconds
	Number          int    // 1-based position in the catalog (0 if unset)
}

// New creates a track from its total seconds, deriving the display text.
func New(id, title string, durationSeconds int) Track {
	return Track{
		ID:              id,
		Title:           title,
		Duration:        FormatSeconds(durationSeconds),
		DurationSeconds: durationSeconds,
	}
}

// Validate checks that the track is usable and that the formatted duration
// agrees with DurationSeconds.
func (t *Track) Validate() error {
	if t.ID == "" {
		return errors.New("track id is required")
	}
	if t.DurationSeconds < 0 {
		return errors.Newf("track %s: negative duration %d", t.ID, t.DurationSeconds)
	}
	if t.Duration == "" {
		return nil
	}
	secs, err := ParseDuration(t.Duration)
	if err != nil {
		return errors.Wrapf(err, "track %s", t.ID)
	}
	if secs != t.DurationSeconds {
		return errors.Newf("track %s: duration %q is %d seconds, want %d",
			t.ID, t.Duration, secs, t.DurationSeconds)
	}
	return nil
}

// NumberLabel returns the zero-padded position label (e.g. "01").
func (t *Track) NumberLabel() string {
	return fmt.Sprintf("%02d", t.Number)
}

// FormatSeconds converts whole seconds to "minutes:seconds" with the seconds
// zero-padded to two digits (65 -> "1:05"). Negative input is treated as 0.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ParseDuration parses "m:ss" text into whole seconds.
func ParseDuration(s string) (int, error) {
	mins, secs, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, errors.Newf("invalid duration %q: expected m:ss", s)
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, errors.Newf("invalid duration %q: bad minutes", s)
	}
	if len(secs) != 2 {
		return 0, errors.Newf("invalid duration %q: seconds must be two digits", s)
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec > 59 {
		return 0, errors.Newf("invalid duration %q: bad seconds", s)
	}
	return m*60 + sec, nil
}
