// Package catalog provides the Catalog domain entity: an ordered, immutable
// list of tracks that defines playback order.
package catalog

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/osa030/bandplayer/internal/domain/track"
)

// Catalog is an ordered sequence of tracks. It is not modified after New.
type Catalog struct {
	album  string
	artist string
	tracks []track.Track
	index  map[string]int
}

// New creates a catalog. Tracks are numbered by position; IDs must be unique
// and every track must validate.
func New(album, artist string, tracks []track.Track) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, errors.New("catalog must contain at least one track")
	}

	c := &Catalog{
		album:  album,
		artist: artist,
		tracks: make([]track.Track, len(tracks)),
		index:  make(map[string]int, len(tracks)),
	}
	for i, t := range tracks {
		if t.Duration == "" {
			t.Duration = track.FormatSeconds(t.DurationSeconds)
		}
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "track at position %d", i+1)
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, errors.Newf("duplicate track id %q", t.ID)
		}
		t.Number = i + 1
		c.tracks[i] = t
		c.index[t.ID] = i
	}
	return c, nil
}

// Album returns the album title.
func (c *Catalog) Album() string { return c.album }

// Artist returns the artist name.
func (c *Catalog) Artist() string { return c.artist }

// Len returns the number of tracks.
func (c *Catalog) Len() int { return len(c.tracks) }

// Tracks returns a copy of the tracks in playback order.
func (c *Catalog) Tracks() []track.Track {
	result := make([]track.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// At returns the track at index i.
func (c *Catalog) At(i int) (track.Track, bool) {
	if i < 0 || i >= len(c.tracks) {
		return track.Track{}, false
	}
	return c.tracks[i], true
}

// First returns the first track ("Play All" target).
func (c *Catalog) First() track.Track {
	return c.tracks[0]
}

// IndexOf returns the position of the track with the given ID.
func (c *Catalog) IndexOf(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Get returns the track with the given ID.
func (c *Catalog) Get(id string) (track.Track, bool) {
	i, ok := c.index[id]
	if !ok {
		return track.Track{}, false
	}
	return c.tracks[i], true
}

// Contains reports whether a track with the given ID is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// NextIndex returns the index after i, wrapping to 0.
func (c *Catalog) NextIndex(i int) int {
	n := len(c.tracks)
	return (i + 1) % n
}

// PreviousIndex returns the index before i, wrapping to the last track.
func (c *Catalog) PreviousIndex(i int) int {
	n := len(c.tracks)
	return (i - 1 + n) % n
}

// TrackIDs returns all track IDs in order.
func (c *Catalog) TrackIDs() []string {
	ids := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		ids[i] = t.ID
	}
	return ids
}

// TotalSeconds returns the total duration of all tracks.
func (c *Catalog) TotalSeconds() int {
	total := 0
	for _, t := range c.tracks {
		total += t.DurationSeconds
	}
	return total
}

// Summary returns the track count and total running time, e.g. "6 Tracks • 28:45".
func (c *Catalog) Summary() string {
	noun := "Tracks"
	if len(c.tracks) == 1 {
		noun = "Track"
	}
	return fmt.Sprintf("%d %s • %s", len(c.tracks), noun, track.FormatSeconds(c.TotalSeconds()))
}
