package spotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     string
		expected string
	}{
		{
			name:     "album URI format",
			input:    "spotify:album:4aawyAB9vmqN3uQ7FjRGTy",
			kind:     "album",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "album URL format",
			input:    "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy",
			kind:     "album",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "album URL with query params",
			input:    "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy?si=abc123",
			kind:     "album",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "intl album URL with trailing slash",
			input:    "https://open.spotify.com/intl-ja/album/abc123/",
			kind:     "album",
			expected: "abc123",
		},
		{
			name:     "track URI",
			input:    "spotify:track:11dFghVXANMlKmJXsNCbNl",
			kind:     "track",
			expected: "11dFghVXANMlKmJXsNCbNl",
		},
		{
			name:     "plain ID",
			input:    "  4aawyAB9vmqN3uQ7FjRGTy ",
			kind:     "album",
			expected: "4aawyAB9vmqN3uQ7FjRGTy",
		},
		{
			name:     "empty string",
			input:    "",
			kind:     "album",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractID(tt.input, tt.kind)
			assert.Equal(t, tt.expected, result,
				"extractID(%s, %s) should return %s", tt.input, tt.kind, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "rate limit error with 429", err: errors.New("Error 429: rate limit exceeded"), expected: true},
		{name: "server error 500", err: errors.New("Error 500: internal server error"), expected: true},
		{name: "server error 503", err: errors.New("503 Service Unavailable"), expected: true},
		{name: "client error 400", err: errors.New("400 Bad Request"), expected: false},
		{name: "not found error", err: errors.New("404 not found"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryable(tt.err))
		})
	}
}

func TestConvertTrack(t *testing.T) {
	tr := convertTrack("id-1", "CIRCLE OF DEATH", 252_900)
	assert.Equal(t, "id-1", tr.ID)
	assert.Equal(t, "CIRCLE OF DEATH", tr.Title)
	assert.Equal(t, 252, tr.DurationSeconds)
	assert.Equal(t, "4:12", tr.Duration)
	assert.NoError(t, tr.Validate())
}

func TestRetry(t *testing.T) {
	c := &Client{maxRetries: 3, retryDelay: time.Millisecond}

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			if calls < 3 {
				return errors.New("503 Service Unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			return errors.New("404 not found")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := c.retry(func() error {
			calls++
			return errors.New("429 rate limit")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries exceeded")
		assert.Equal(t, 3, calls)
	})
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)

	c, err := New(context.Background(), Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "US", c.market)
	assert.Equal(t, "https://open.spotify.com/album/abc", c.GetAlbumURL("abc"))
}
