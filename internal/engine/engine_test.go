package engine

import (
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlimbo/core/internal/sound"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "Playing", Playing.String())
	assert.Equal(t, "Paused", Paused.String())
}

func TestLevelToVolumeMonotonic(t *testing.T) {
	assert.Equal(t, -10.0, levelToVolume(0))
	assert.Equal(t, 0.0, levelToVolume(1))
	assert.Less(t, levelToVolume(0.5), levelToVolume(1))
}

func TestEnumerateReturnsSingleDefaultDevice(t *testing.T) {
	devices := Enumerate()
	require.Len(t, devices, 1)
	assert.True(t, devices[0].IsDefault)
	assert.Equal(t, "default", devices[0].Name)
}

// fakeStreamer produces a fixed number of stereo frames at a constant
// value then reports exhaustion, mirroring the teacher's mockStreamer.
type fakeStreamer struct {
	total, produced int
	val             float64
	length          int
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) {
	remaining := f.total - f.produced
	if remaining <= 0 {
		return 0, false
	}
	n := len(samples)
	if n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{f.val, f.val}
	}
	f.produced += n
	return n, true
}

func (f *fakeStreamer) Err() error      { return nil }
func (f *fakeStreamer) Len() int        { return f.length }
func (f *fakeStreamer) Position() int   { return f.produced }
func (f *fakeStreamer) Seek(p int) error { f.produced = p; return nil }
func (f *fakeStreamer) Close() error     { return nil }

func newFakeSound(samples int, val float64) *sound.Sound {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	return sound.NewSound("/music/t.flac", "FLAC", &fakeStreamer{total: samples, val: val, length: samples}, format, 1<<14)
}

func drainFully(t *testing.T, s *sound.Sound) {
	t.Helper()
	for i := 0; i < 100 && !s.EOF(); i++ {
		s.Pump()
	}
}

func TestPullStreamerHandsOffToNextOnEOF(t *testing.T) {
	e := New()
	e.current = newFakeSound(10, 1.0)
	e.next = newFakeSound(10, 2.0)
	drainFully(t, e.current)
	drainFully(t, e.next)

	ps := &pullStreamer{e: e}
	buf := make([][2]float64, 25)
	n, ok := ps.Stream(buf)

	require.True(t, ok)
	assert.Equal(t, 20, n)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1.0, buf[i][0])
	}
	for i := 10; i < 20; i++ {
		assert.Equal(t, 2.0, buf[i][0])
	}
	assert.True(t, e.IsTrackFinished())
	assert.Nil(t, e.next)
}

func TestPullStreamerReportsExhaustionWithNoNext(t *testing.T) {
	e := New()
	e.current = newFakeSound(5, 1.0)
	drainFully(t, e.current)

	ps := &pullStreamer{e: e}
	buf := make([][2]float64, 5)
	n, ok := ps.Stream(buf)
	require.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = ps.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.True(t, e.IsTrackFinished())
}

func TestClearTrackFinishedFlag(t *testing.T) {
	e := New()
	e.trackFinished.Store(true)
	e.ClearTrackFinishedFlag()
	assert.False(t, e.IsTrackFinished())
}

func TestSetVolumeClampsToRange(t *testing.T) {
	e := New()
	e.SetVolume(-1)
	assert.Equal(t, 0.0, e.Volume())
	e.SetVolume(10)
	assert.Equal(t, 1.5, e.Volume())
}

func TestSeekAbsoluteWithoutCurrentTrackErrors(t *testing.T) {
	e := New()
	err := e.SeekAbsolute(0)
	assert.ErrorIs(t, err, ErrNoCurrentTrack)
}

func TestSwitchDeviceRejectsUnknownName(t *testing.T) {
	e := New()
	_, err := e.SwitchDevice("hdmi-out")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestSwitchDeviceIsNoOpReturningCurrentSnapshot(t *testing.T) {
	e := New()
	before := e.Info()
	after, err := e.SwitchDevice("default")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	after, err = e.SwitchDevice("")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
