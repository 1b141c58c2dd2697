package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1000, cfg.Playback.TickIntervalMs)
	assert.Equal(t, 0.7, cfg.Playback.InitialVolume)
	assert.Equal(t, 64, cfg.Playback.EventBuffer)
	assert.Equal(t, "static", cfg.Catalog.Source.Type)
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.SweepInterval())
}

func TestParse_File(t *testing.T) {
	data := []byte(`
server:
  addr: ":9090"
playback:
  tick_interval_ms: 250
  initial_volume: 0.5
session:
  max_sessions: 5
catalog:
  source:
    type: static
    settings:
      album: "Demo"
      tracks:
        - id: "a"
          title: "A"
          duration: "1:05"
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 0.5, cfg.Playback.InitialVolume)
	assert.Equal(t, 5, cfg.Session.MaxSessions)
	assert.Equal(t, "Demo", cfg.Catalog.Source.Settings["album"])
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "volume above one",
			yaml:    "playback:\n  initial_volume: 1.5\n",
			wantErr: true,
			errMsg:  "InitialVolume",
		},
		{
			name:    "tick interval too small",
			yaml:    "playback:\n  tick_interval_ms: 1\n",
			wantErr: true,
			errMsg:  "TickIntervalMs",
		},
		{
			name:    "unknown source type",
			yaml:    "catalog:\n  source:\n    type: ftp\n",
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "spotify source without credentials",
			yaml:    "catalog:\n  source:\n    type: spotify\n",
			wantErr: true,
			errMsg:  "client_id",
		},
		{
			name:    "spotify source with credentials",
			yaml:    "catalog:\n  source:\n    type: spotify\nspotify:\n  client_id: id\n  client_secret: secret\n",
			wantErr: false,
		},
		{
			name:    "invalid market length",
			yaml:    "spotify:\n  market: USA\n",
			wantErr: true,
			errMsg:  "Market",
		},
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("BANDPLAYER_ADDR", ":7000")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("ADMIN_TOKEN", "env-token")

	cfg, err := Parse([]byte("server:\n  addr: \":9090\"\nspotify:\n  client_id: file-id\nadmin:\n  token: file-token\n"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "env-token", cfg.Admin.Token)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "static", cfg.Catalog.Source.Type)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(path, []byte("session:\n  max_sessions: 3\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Session.MaxSessions)
	})
}
