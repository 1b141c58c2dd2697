package catalogsource

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bandplayer/internal/domain/catalog"
)

type SpotifySourceConfig struct {
	AlbumURL string `yaml:"album_url" mapstructure:"album_url" validate:"required"`
}

// SpotifySource imports an album from Spotify as the catalog.
type SpotifySource struct {
	albums AlbumClient
	config *SpotifySourceConfig
}

// NewSpotifySource creates a SpotifySource.
func NewSpotifySource(albums AlbumClient, settings map[string]any) (*SpotifySource, error) {
	var config SpotifySourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("spotify source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("spotify source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &SpotifySource{albums: albums, config: &config}, nil
}

// Load fetches the album and its tracks.
func (s *SpotifySource) Load(ctx context.Context) (*catalog.Catalog, error) {
	album, err := s.albums.GetAlbum(ctx, s.config.AlbumURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get album from spotify")
	}
	zlog.Info().Msgf("loaded spotify album: name=%s artist=%s tracks=%d", album.Name, album.Artist, len(album.Tracks))

	return catalog.New(album.Name, album.Artist, album.Tracks)
}

// Name returns the source name.
func (s *SpotifySource) Name() string {
	return "spotify"
}
