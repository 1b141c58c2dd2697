package track

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected string
	}{
		{name: "zero", seconds: 0, expected: "0:00"},
		{name: "under a minute", seconds: 5, expected: "0:05"},
		{name: "one minute five", seconds: 65, expected: "1:05"},
		{name: "ten minutes", seconds: 600, expected: "10:00"},
		{name: "album track", seconds: 252, expected: "4:12"},
		{name: "over an hour", seconds: 3725, expected: "62:05"},
		{name: "negative clamps to zero", seconds: -3, expected: "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSeconds(tt.seconds))
		})
	}
}

func TestFormatSeconds_MatchesRule(t *testing.T) {
	for s := 0; s < 4000; s++ {
		want := fmt.Sprintf("%d:%02d", s/60, s%60)
		require.Equal(t, want, FormatSeconds(s), "seconds=%d", s)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "simple", input: "4:12", expected: 252},
		{name: "zero minutes", input: "0:05", expected: 5},
		{name: "long", input: "10:00", expected: 600},
		{name: "surrounding space", input: " 6:45 ", expected: 405},
		{name: "missing colon", input: "412", wantErr: true},
		{name: "single digit seconds", input: "4:2", wantErr: true},
		{name: "seconds out of range", input: "4:60", wantErr: true},
		{name: "negative minutes", input: "-1:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTrack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{
			name:  "consistent duration",
			track: Track{ID: "1", Title: "CIRCLE OF DEATH", Duration: "4:12", DurationSeconds: 252},
		},
		{
			name:  "seconds only",
			track: Track{ID: "2", Title: "STRANGERS", DurationSeconds: 228},
		},
		{
			name:    "inconsistent duration",
			track:   Track{ID: "3", Title: "TERRAFORM", Duration: "5:07", DurationSeconds: 306},
			wantErr: true,
		},
		{
			name:    "empty id",
			track:   Track{Title: "No ID", DurationSeconds: 10},
			wantErr: true,
		},
		{
			name:    "negative seconds",
			track:   Track{ID: "4", DurationSeconds: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tr := New("6", "IS THIS LIMBO..", 405)
	assert.Equal(t, "6:45", tr.Duration)
	assert.NoError(t, tr.Validate())

	tr.Number = 6
	assert.Equal(t, "06", tr.NumberLabel())
}
