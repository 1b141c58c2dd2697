// Package catalogsource loads the player catalog from a configured source.
package catalogsource

import (
	"context"

	"github.com/osa030/bandplayer/internal/domain/catalog"
	"github.com/osa030/bandplayer/internal/infra/spotify"
)

// Source is the interface for catalog sources.
// Different implementations load the catalog from different places
// (e.g., static configuration, a Spotify album).
type Source interface {
	// Load builds the catalog. It is called once at startup.
	Load(ctx context.Context) (*catalog.Catalog, error)

	// Name returns the source type name (used in config).
	Name() string
}

// AlbumClient defines the Spotify operations needed by the spotify source.
type AlbumClient interface {
	GetAlbum(ctx context.Context, albumURL string) (*spotify.Album, error)
}
