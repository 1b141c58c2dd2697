package catalogsource

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bandplayer/internal/infra/config"
)

// NewFromConfig creates the catalog source named by the configuration.
// albums may be nil unless the source type is "spotify".
func NewFromConfig(cfg *config.Config, albums AlbumClient) (Source, error) {
	scfg := cfg.Catalog.Source
	zlog.Debug().Msgf("creating catalog source: type=%s settings=%+v", scfg.Type, scfg.Settings)

	var (
		source Source
		err    error
	)
	switch scfg.Type {
	case "static", "":
		source, err = NewStaticSource(scfg.Settings)

	case "spotify":
		if albums == nil {
			return nil, errors.New("spotify catalog source requires a spotify client")
		}
		source, err = NewSpotifySource(albums, scfg.Settings)

	default:
		return nil, errors.Newf("unsupported catalog source type: %s", scfg.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create catalog source (type %s)", scfg.Type)
	}

	zlog.Info().Msgf("registered catalog source: type=%s", source.Name())
	return source, nil
}
