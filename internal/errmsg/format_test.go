package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLibraryScan,
			err:      nil,
			expected: "",
		},
		{
			name:     "library scan operation",
			op:       OpLibraryScan,
			err:      errors.New("permission denied"),
			expected: "Failed to scan library: permission denied",
		},
		{
			name:     "library rebuild operation",
			op:       OpLibraryRebuild,
			err:      errors.New("disk full"),
			expected: "Failed to rebuild library index: disk full",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTagRead,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpTagRead,
			context:  "song.mp3",
			err:      errors.New("corrupt frame"),
			expected: "Failed to read file tags 'song.mp3': corrupt frame",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpTagRead,
			context:  "",
			err:      errors.New("corrupt frame"),
			expected: "Failed to read file tags: corrupt frame",
		},
		{
			name:     "playback load with path context",
			op:       OpPlaybackLoad,
			context:  "/home/user/music/track.flac",
			err:      errors.New("unsupported codec"),
			expected: "Failed to load track '/home/user/music/track.flac': unsupported codec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpLibraryScan, OpLibraryLoad, OpLibraryRebuild, OpLibrarySave,
		OpTagRead, OpArtExtract,
		OpPlaybackStart, OpPlaybackSeek, OpPlaybackLoad,
		OpConfigLoad, OpConfigWatch,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
