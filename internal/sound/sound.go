package sound

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/inlimbo/core/internal/ring"
)

// decodeChunk is the number of stereo frames pulled from the underlying
// beep.Streamer per decode step and pushed into the ring buffer.
const decodeChunk = 2048

// Sound is the per-track decoder/playback state: a decoded audio source
// plus the ring buffer an Audio Engine output loop drains from.
type Sound struct {
	path     string
	codec    string
	streamer beep.StreamSeekCloser
	format   beep.Format
	duration time.Duration

	// StartSkip/EndSkip are encoder delay/padding, in frames, trimmed at
	// the head/tail for gapless playback. Most formats this stack
	// decodes (go-mp3 for LAME/Xing, FLAC, Vorbis, Opus pre-skip handled
	// inside DecodeOgg) already trim these internally; StartSkip/EndSkip
	// exist for formats whose container exposes the values but whose
	// decoder doesn't apply them (currently none), so both default to 0.
	StartSkip int
	EndSkip   int

	ring *ring.Buffer

	cursorFrames    atomic.Int64
	seekPending     atomic.Bool
	seekTargetFrame atomic.Int64
	eof             atomic.Bool

	scratch [][2]float64
}

// NewSound wraps an already-decoded streamer in a Sound with a ring
// buffer of the given capacity (in interleaved samples, i.e.
// frames*channels).
func NewSound(path, codec string, streamer beep.StreamSeekCloser, format beep.Format, ringCapacity int) *Sound {
	s := &Sound{
		path:     path,
		codec:    codec,
		streamer: streamer,
		format:   format,
		duration: format.SampleRate.D(streamer.Len()),
		ring:     ring.New(ringCapacity),
		scratch:  make([][2]float64, decodeChunk),
	}
	return s
}

// Path returns the source file path.
func (s *Sound) Path() string { return s.path }

// Codec returns the resolved codec name (e.g. "FLAC", "OPUS", "ALAC").
func (s *Sound) Codec() string { return s.codec }

// Format returns the decoded sample format.
func (s *Sound) Format() beep.Format { return s.format }

// Duration returns the track's total duration.
func (s *Sound) Duration() time.Duration { return s.duration }

// DurationFrames returns the track's total length in frames.
func (s *Sound) DurationFrames() int { return s.streamer.Len() }

// CursorFrames returns the current decode cursor, in frames.
func (s *Sound) CursorFrames() int64 { return s.cursorFrames.Load() }

// EOF reports whether the decoder has reached the end of the stream and
// the ring buffer has been fully drained.
func (s *Sound) EOF() bool {
	return s.eof.Load() && s.ring.Available() == 0
}

// RequestSeek schedules a seek to targetFrame, to be applied by the next
// Pump call. Safe to call from any goroutine.
func (s *Sound) RequestSeek(targetFrame int) {
	if targetFrame < 0 {
		targetFrame = 0
	}
	if max := s.streamer.Len(); targetFrame > max {
		targetFrame = max
	}
	s.seekTargetFrame.Store(int64(targetFrame))
	s.seekPending.Store(true)
}

// Pump decodes up to one chunk of audio into the ring buffer, applying
// any pending seek first. It is meant to be called repeatedly by the
// engine's decode goroutine whenever the ring has space. Returns false
// once decoding is exhausted and the ring has nothing left to drain.
func (s *Sound) Pump() bool {
	if s.seekPending.CompareAndSwap(true, false) {
		target := int(s.seekTargetFrame.Load())
		if err := s.streamer.Seek(target); err == nil {
			s.cursorFrames.Store(int64(target))
			s.ring.Clear()
			s.eof.Store(false)
		}
	}

	if s.eof.Load() {
		return s.ring.Available() > 0
	}

	if s.ring.Space() < decodeChunk*s.format.NumChannels {
		return true
	}

	n, ok := s.streamer.Stream(s.scratch)
	if n > 0 {
		buf := make([]float32, 0, n*s.format.NumChannels)
		for i := 0; i < n; i++ {
			buf = append(buf, float32(s.scratch[i][0]))
			if s.format.NumChannels == 2 {
				buf = append(buf, float32(s.scratch[i][1]))
			}
		}
		s.ring.Write(buf)
		s.cursorFrames.Add(int64(n))
	}
	if !ok {
		s.eof.Store(true)
	}
	return true
}

// Ring exposes the underlying sample queue for the engine's output loop.
func (s *Sound) Ring() *ring.Buffer { return s.ring }

// Err returns any decode error encountered by the underlying streamer.
func (s *Sound) Err() error { return s.streamer.Err() }

// Close releases the underlying decoder and file handle.
func (s *Sound) Close() error { return s.streamer.Close() }
