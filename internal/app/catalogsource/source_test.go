package catalogsource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bandplayer/internal/domain/track"
	"github.com/osa030/bandplayer/internal/infra/config"
	"github.com/osa030/bandplayer/internal/infra/spotify"
)

type fakeAlbums struct {
	album *spotify.Album
	err   error
	urls  []string
}

func (f *fakeAlbums) GetAlbum(_ context.Context, albumURL string) (*spotify.Album, error) {
	f.urls = append(f.urls, albumURL)
	return f.album, f.err
}

func TestStaticSource_Default(t *testing.T) {
	src, err := NewStaticSource(nil)
	require.NoError(t, err)
	assert.Equal(t, "static", src.Name())

	cat, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultAlbum, cat.Album())
	assert.Equal(t, DefaultArtist, cat.Artist())
	assert.Equal(t, 6, cat.Len())
	assert.Equal(t, "6 Tracks • 28:45", cat.Summary())

	first := cat.First()
	assert.Equal(t, "CIRCLE OF DEATH", first.Title)
	assert.Equal(t, "4:12", first.Duration)
	assert.Equal(t, 252, first.DurationSeconds)

	last, ok := cat.At(5)
	require.True(t, ok)
	assert.Equal(t, "IS THIS LIMBO..", last.Title)
	assert.Equal(t, "6:45", last.Duration)
}

func TestStaticSource_Configured(t *testing.T) {
	settings := map[string]any{
		"album":  "Demo",
		"artist": "Band",
		"tracks": []any{
			map[string]any{"id": "a", "title": "A", "duration": "1:05"},
			map[string]any{"id": "b", "title": "B", "duration_seconds": 90},
			map[string]any{"id": "c", "title": "C", "duration": "0:30", "duration_seconds": 30},
		},
	}
	src, err := NewStaticSource(settings)
	require.NoError(t, err)

	cat, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Demo", cat.Album())
	assert.Equal(t, "Band", cat.Artist())
	assert.Equal(t, []string{"a", "b", "c"}, cat.TrackIDs())

	a, _ := cat.Get("a")
	assert.Equal(t, 65, a.DurationSeconds)
	b, _ := cat.Get("b")
	assert.Equal(t, "1:30", b.Duration)
}

func TestStaticSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		onLoad   bool
	}{
		{
			name:     "missing title",
			settings: map[string]any{"tracks": []any{map[string]any{"id": "a", "duration": "1:00"}}},
		},
		{
			name:     "missing id",
			settings: map[string]any{"tracks": []any{map[string]any{"title": "A", "duration": "1:00"}}},
		},
		{
			name:     "tracks not a list",
			settings: map[string]any{"tracks": "nope"},
		},
		{
			name: "duration text disagrees with seconds",
			settings: map[string]any{"tracks": []any{
				map[string]any{"id": "a", "title": "A", "duration": "4:13", "duration_seconds": 252},
			}},
			onLoad: true,
		},
		{
			name: "bad duration text",
			settings: map[string]any{"tracks": []any{
				map[string]any{"id": "a", "title": "A", "duration": "four"},
			}},
			onLoad: true,
		},
		{
			name: "duplicate ids",
			settings: map[string]any{"tracks": []any{
				map[string]any{"id": "a", "title": "A", "duration": "1:00"},
				map[string]any{"id": "a", "title": "B", "duration": "2:00"},
			}},
			onLoad: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewStaticSource(tt.settings)
			if !tt.onLoad {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, err = src.Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestSpotifySource(t *testing.T) {
	t.Run("loads album", func(t *testing.T) {
		albums := &fakeAlbums{album: &spotify.Album{
			Name:   "Album",
			Artist: "Artist",
			Tracks: []track.Track{
				track.New("t1", "One", 200),
				track.New("t2", "Two", 180),
			},
		}}
		src, err := NewSpotifySource(albums, map[string]any{"album_url": "spotify:album:xyz"})
		require.NoError(t, err)
		assert.Equal(t, "spotify", src.Name())

		cat, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"spotify:album:xyz"}, albums.urls)
		assert.Equal(t, "Album", cat.Album())
		assert.Equal(t, 2, cat.Len())
		assert.Equal(t, "3:20", cat.First().Duration)
	})

	t.Run("requires album_url", func(t *testing.T) {
		_, err := NewSpotifySource(&fakeAlbums{}, map[string]any{})
		assert.Error(t, err)
	})

	t.Run("propagates client error", func(t *testing.T) {
		src, err := NewSpotifySource(&fakeAlbums{err: errors.New("503")}, map[string]any{"album_url": "x"})
		require.NoError(t, err)
		_, err = src.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("empty album", func(t *testing.T) {
		src, err := NewSpotifySource(&fakeAlbums{album: &spotify.Album{Name: "Empty"}}, map[string]any{"album_url": "x"})
		require.NoError(t, err)
		_, err = src.Load(context.Background())
		assert.Error(t, err)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("static by default", func(t *testing.T) {
		cfg := &config.Config{}
		src, err := NewFromConfig(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "static", src.Name())
	})

	t.Run("spotify needs client", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Catalog.Source.Type = "spotify"
		cfg.Catalog.Source.Settings = map[string]any{"album_url": "x"}

		_, err := NewFromConfig(cfg, nil)
		assert.Error(t, err)

		src, err := NewFromConfig(cfg, &fakeAlbums{})
		require.NoError(t, err)
		assert.Equal(t, "spotify", src.Name())
	})

	t.Run("unknown type", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Catalog.Source.Type = "ftp"
		_, err := NewFromConfig(cfg, nil)
		assert.Error(t, err)
	})
}
