package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlimbo/core/internal/playback"
)

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		in   string
		want playback.RepeatMode
	}{
		{"off", playback.RepeatOff},
		{"", playback.RepeatOff},
		{"one", playback.RepeatOne},
		{"all", playback.RepeatAll},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRepeatMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRepeatModeRejectsUnknown(t *testing.T) {
	_, err := parseRepeatMode("shuffle")
	assert.Error(t, err)
}
