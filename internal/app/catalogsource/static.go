package catalogsource

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bandplayer/internal/domain/catalog"
	"github.com/osa030/bandplayer/internal/domain/track"
)

// Default album used when no tracks are configured.
const (
	DefaultAlbum  = "AETERNUM VALE"
	DefaultArtist = "FROM MISERY TO MALICE"
)

// DefaultTracks returns the tracks of the default album.
func DefaultTracks() []track.Track {
	return []track.Track{
		track.New("1", "CIRCLE OF DEATH", 252),
		track.New("2", "STRANGERS", 228),
		track.New("3", "TERRAFORM", 306),
		track.New("4", "SKIN OF GLASS", 273),
		track.New("5", "A WILTED WALTZ", 261),
		track.New("6", "IS THIS LIMBO..", 405),
	}
}

type StaticSourceConfig struct {
	Album  string              `yaml:"album" mapstructure:"album" default:"Untitled"`
	Artist string              `yaml:"artist" mapstructure:"artist" default:"Unknown Artist"`
	Tracks []StaticTrackConfig `yaml:"tracks" mapstructure:"tracks" validate:"dive"`
}

// StaticTrackConfig describes one track. Either Duration ("m:ss") or
// DurationSeconds may be given; when both are, they must agree.
type StaticTrackConfig struct {
	ID              string `yaml:"id" mapstructure:"id" validate:"required"`
	Title           string `yaml:"title" mapstructure:"title" validate:"required"`
	Duration        string `yaml:"duration" mapstructure:"duration"`
	DurationSeconds int    `yaml:"duration_seconds" mapstructure:"duration_seconds" validate:"gte=0"`
}

// StaticSource serves a catalog defined in configuration.
type StaticSource struct {
	config *StaticSourceConfig
}

// NewStaticSource creates a StaticSource. With no tracks configured it serves
// the default album.
func NewStaticSource(settings map[string]any) (*StaticSource, error) {
	var config StaticSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if len(config.Tracks) == 0 {
		config.Album = DefaultAlbum
		config.Artist = DefaultArtist
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("static source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("static source validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	return &StaticSource{config: &config}, nil
}

// Load builds the configured catalog.
func (s *StaticSource) Load(_ context.Context) (*catalog.Catalog, error) {
	if len(s.config.Tracks) == 0 {
		return catalog.New(s.config.Album, s.config.Artist, DefaultTracks())
	}

	tracks := make([]track.Track, 0, len(s.config.Tracks))
	for _, tc := range s.config.Tracks {
		t, err := tc.toTrack()
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return catalog.New(s.config.Album, s.config.Artist, tracks)
}

// Name returns the source name.
func (s *StaticSource) Name() string {
	return "static"
}

func (tc StaticTrackConfig) toTrack() (track.Track, error) {
	t := track.Track{
		ID:              tc.ID,
		Title:           tc.Title,
		Duration:        tc.Duration,
		DurationSeconds: tc.DurationSeconds,
	}
	if tc.DurationSeconds == 0 && tc.Duration != "" {
		secs, err := track.ParseDuration(tc.Duration)
		if err != nil {
			return track.Track{}, errors.Wrapf(err, "track %s", tc.ID)
		}
		t.DurationSeconds = secs
	}
	if err := t.Validate(); err != nil {
		return track.Track{}, err
	}
	return t, nil
}
