// Package spotify provides a client for the Spotify Web API, used to import
// an album as the player catalog.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/bandplayer/internal/domain/track"
)

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// Album is an album and its tracks in disc order.
type Album struct {
	ID     string
	Name   string
	Artist string
	URL    string
	Tracks []track.Track
}

// New creates a new Spotify client using the client credentials flow.
// Album data is public, so no user authorization is needed.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// HTTP client that fetches and refreshes the app token on demand
	httpClient := creds.Client(ctx)

	market := cfg.Market
	if market == "" {
		market = "US"
	}

	return &Client{
		client:     spotify.New(httpClient),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// GetAlbum retrieves an album and all of its tracks by ID, URL, or URI.
func (c *Client) GetAlbum(ctx context.Context, albumURL string) (*Album, error) {
	albumID := extractID(albumURL, "album")
	if albumID == "" {
		return nil, errors.New("invalid album URL")
	}

	var full *spotify.FullAlbum
	err := c.retry(func() error {
		a, err := c.client.GetAlbum(ctx, spotify.ID(albumID), spotify.Market(c.market))
		if err != nil {
			return err
		}
		full = a
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get album")
	}

	album := &Album{
		ID:   string(full.ID),
		Name: full.Name,
		URL:  c.GetAlbumURL(string(full.ID)),
	}
	if len(full.Artists) > 0 {
		album.Artist = full.Artists[0].Name
	}

	tracks, err := c.getAlbumTracks(ctx, albumID)
	if err != nil {
		return nil, err
	}
	album.Tracks = tracks

	return album, nil
}

// getAlbumTracks pages through every track of an album.
func (c *Client) getAlbumTracks(ctx context.Context, albumID string) ([]track.Track, error) {
	var tracks []track.Track
	offset := 0
	limit := 50

	for {
		var page *spotify.SimpleTrackPage
		err := c.retry(func() error {
			p, err := c.client.GetAlbumTracks(ctx, spotify.ID(albumID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get album tracks")
		}

		for _, t := range page.Tracks {
			if t.ID == "" {
				continue
			}
			tracks = append(tracks, convertTrack(string(t.ID), t.Name, int(t.Duration)))
		}

		if len(page.Tracks) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// GetAlbumURL returns the Spotify URL for an album.
func (c *Client) GetAlbumURL(albumID string) string {
	return fmt.Sprintf("https://open.spotify.com/album/%s", albumID)
}

// convertTrack converts Spotify track fields to a domain Track. Durations
// are truncated to whole seconds, as the Spotify apps display them.
func convertTrack(id, name string, durationMs int) track.Track {
	return track.New(id, name, durationMs/1000)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractID extracts the ID of the given kind ("album", "track") from a
// Spotify URL or URI. Anything else is assumed to already be an ID.
func extractID(input, kind string) string {
	input = strings.TrimSpace(input)

	// Spotify URI format: spotify:<kind>:ID
	uriPrefix := "spotify:" + kind + ":"
	if strings.HasPrefix(input, uriPrefix) {
		return strings.TrimPrefix(input, uriPrefix)
	}

	// URL format: https://open.spotify.com/<kind>/ID or https://open.spotify.com/intl-XX/<kind>/ID
	sep := "/" + kind + "/"
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, sep) {
		parts := strings.Split(input, sep)
		// Remove query parameters and trailing slashes
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	return input
}
