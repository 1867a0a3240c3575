package sound

import (
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer is a silence generator of fixed length, for exercising
// Sound's decode-pump and seek logic without a real audio file.
type fakeStreamer struct {
	pos, length int
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= f.length {
		return 0, false
	}
	n := len(samples)
	if remaining := f.length - f.pos; n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{0, 0}
	}
	f.pos += n
	return n, true
}

func (f *fakeStreamer) Err() error      { return nil }
func (f *fakeStreamer) Len() int        { return f.length }
func (f *fakeStreamer) Position() int   { return f.pos }
func (f *fakeStreamer) Seek(p int) error { f.pos = p; return nil }
func (f *fakeStreamer) Close() error     { return nil }

func newTestSound(length int) *Sound {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	return NewSound("/music/test.flac", "FLAC", &fakeStreamer{length: length}, format, 1<<12)
}

func TestPumpFillsRingAndAdvancesCursor(t *testing.T) {
	s := newTestSound(10000)
	require.True(t, s.Pump())
	assert.Greater(t, s.CursorFrames(), int64(0))
	assert.False(t, s.EOF())
}

func TestPumpReachesEOFWhenStreamerExhausted(t *testing.T) {
	s := newTestSound(100)
	buf := make([]float32, 1<<12)
	for i := 0; i < 20; i++ {
		s.Pump()
		s.Ring().Read(buf) // EOF also needs the ring drained
	}
	assert.Equal(t, int64(100), s.CursorFrames())
	assert.True(t, s.EOF())
}

func TestRequestSeekClampsToValidRange(t *testing.T) {
	s := newTestSound(10000)
	s.RequestSeek(-5)
	s.Pump()
	// Pump applies the seek to 0, then decodes one 2048-frame chunk.
	assert.Equal(t, int64(2048), s.CursorFrames())

	s.RequestSeek(50000)
	s.Pump()
	assert.Equal(t, int64(10000), s.CursorFrames())
}

func TestRequestSeekClearsRingAndResetsEOF(t *testing.T) {
	s := newTestSound(100)
	buf := make([]float32, 1<<12)
	for i := 0; i < 20; i++ {
		s.Pump()
		s.Ring().Read(buf)
	}
	require.True(t, s.EOF())

	s.RequestSeek(0)
	s.Pump()
	assert.False(t, s.eof.Load())
}
