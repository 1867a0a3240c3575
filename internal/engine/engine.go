// Package engine owns the device connection and the decode/output
// pipeline: it pulls decoded frames out of a sound.Sound's ring buffer,
// writes them to the speaker, and performs gapless hand-off, seeking,
// and volume control on the live stream.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/inlimbo/core/internal/sound"
	"github.com/inlimbo/core/internal/stderr"
)

// State is the engine's playback state machine: Stopped, Playing, Paused.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Device describes one enumerable audio output. This stack's output
// abstraction (gopxl/beep/v2's speaker package) only ever exposes a
// single default device, so Enumerate always returns exactly one entry.
type Device struct {
	Name        string
	Description string
	CardIdx     int
	DevIdx      int
	IsDefault   bool
}

// Enumerate returns the devices available for output.
func Enumerate() []Device {
	return []Device{{Name: "default", Description: "System default output", IsDefault: true}}
}

// ErrUnknownDevice is returned by SwitchDevice for any name other than
// the single device Enumerate exposes.
var ErrUnknownDevice = errors.New("engine: unknown device")

// InitForDevice initializes the speaker against the named device at sr,
// the sample rate of the first track that will play. gopxl/beep/v2's
// speaker only ever multiplexes onto one host device, so name must be
// "default" or "" (the same device Enumerate reports); anything else
// fails with ErrUnknownDevice rather than silently picking a different
// backend.
func (e *Engine) InitForDevice(name string, sr beep.SampleRate) error {
	if name != "" && name != "default" {
		return ErrUnknownDevice
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initDevice(sr)
}

// SwitchDevice is a no-op: this stack's output abstraction exposes only
// one device, so there is nothing to switch to. It validates name and
// returns the current backend snapshot unchanged, matching the shape a
// real multi-device switch would have.
func (e *Engine) SwitchDevice(name string) (BackendInfo, error) {
	if name != "" && name != "default" {
		return BackendInfo{}, ErrUnknownDevice
	}
	return e.Info(), nil
}

// BackendInfo is the engine's observable state, as polled by the
// Playback Service / MPRIS bridge.
type BackendInfo struct {
	DeviceName  string
	SampleRate  int
	Channels    int
	PCMFormat   string
	BufferSize  int
	PeriodSize  int
	CodecName   string
	LatencyMS   float64
	XRuns       uint64
	Writes      uint64
	IsActive    bool
	IsPlaying   bool
	IsPaused    bool
}

const (
	copyBufferSamples = 4096
	period            = 100 * time.Millisecond
)

// Engine is the Audio Engine: device state plus the decode/output loop
// for exactly one playing Sound (with an optional eagerly-prepared next
// Sound for gapless hand-off).
type Engine struct {
	mu sync.Mutex

	state     State
	current   *sound.Sound
	next      *sound.Sound
	speakerSR beep.SampleRate
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	volLevel  float64
	muted     bool

	initialized bool

	xruns  atomic.Uint64
	writes atomic.Uint64

	trackFinished atomic.Bool

	copyMu     sync.Mutex
	copyBuffer []float32
	copySeq    atomic.Uint64

	decodeStop chan struct{}
	decodeWG   sync.WaitGroup
}

// New creates an idle Engine.
func New() *Engine {
	return &Engine{
		volLevel:   1.0,
		copyBuffer: make([]float32, 0, copyBufferSamples),
	}
}

// initDevice lazily initializes the speaker on first use, at the sample
// rate of the first track played. Every later track is resampled to
// match, since beep's speaker can't be reopened at a different rate
// without an audible glitch.
func (e *Engine) initDevice(sr beep.SampleRate) error {
	if e.initialized {
		return nil
	}
	if err := stderr.Start(); err != nil {
		return fmt.Errorf("engine: stderr capture: %w", err)
	}
	if err := speaker.Init(sr, sr.N(period)); err != nil {
		return fmt.Errorf("engine: device init: %w", err)
	}
	e.speakerSR = sr
	e.initialized = true
	return nil
}

// Load opens path as the current track and starts playback immediately
// (Stopped/Playing/Paused -> Playing). Any previously playing track is
// torn down first.
func (e *Engine) Load(path string) error {
	snd, err := sound.Open(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	if err := e.initDevice(snd.Format().SampleRate); err != nil {
		snd.Close()
		return err
	}

	speaker.Lock()
	e.current = snd
	speaker.Unlock()
	e.startOutputLocked()
	return nil
}

// QueueNext eagerly opens path as the next track for gapless hand-off.
// Errors are non-fatal to current playback: the caller simply won't get
// a gapless transition for this track.
func (e *Engine) QueueNext(path string) error {
	snd, err := sound.Open(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var prev *sound.Sound
	if e.initialized {
		speaker.Lock()
		prev = e.next
		e.next = snd
		speaker.Unlock()
	} else {
		prev = e.next
		e.next = snd
	}
	if prev != nil {
		prev.Close()
	}
	return nil
}

// ClearNext discards any eagerly-prepared next track.
func (e *Engine) ClearNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var prev *sound.Sound
	if e.initialized {
		speaker.Lock()
		prev = e.next
		e.next = nil
		speaker.Unlock()
	} else {
		prev = e.next
		e.next = nil
	}
	if prev != nil {
		prev.Close()
	}
}

func (e *Engine) startOutputLocked() {
	var playStream beep.Streamer = &pullStreamer{e: e}
	if e.current.Format().SampleRate != e.speakerSR {
		playStream = beep.Resample(4, e.current.Format().SampleRate, e.speakerSR, playStream)
	}
	e.ctrl = &beep.Ctrl{Streamer: playStream, Paused: false}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2, Volume: levelToVolume(e.volLevel), Silent: e.muted}
	e.state = Playing

	e.decodeStop = make(chan struct{})
	e.decodeWG.Add(1)
	go e.decodeLoop(e.decodeStop)

	speaker.Play(e.volume)
}

// decodeLoop periodically pumps the current (and, once opened, next)
// Sound's decoder into its ring buffer, independent of the output
// thread's pull rate.
func (e *Engine) decodeLoop(stop chan struct{}) {
	defer e.decodeWG.Done()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			speaker.Lock()
			cur, nxt := e.current, e.next
			speaker.Unlock()
			if cur != nil {
				cur.Pump()
			}
			if nxt != nil {
				nxt.Pump()
			}
		}
	}
}

// pullStreamer adapts Engine's ring-buffered Sound pair to beep's
// pull-based beep.Streamer interface, performing gapless hand-off when
// current hits EOF with an empty ring and a next track is ready.
type pullStreamer struct {
	e   *Engine
	buf []float32
}

func (p *pullStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	e := p.e
	if e.current == nil {
		return 0, false
	}
	channels := e.current.Format().NumChannels
	need := len(samples) * channels
	if cap(p.buf) < need {
		p.buf = make([]float32, need)
	}
	buf := p.buf[:need]

	got := e.current.Ring().Read(buf)
	e.writes.Add(1)

	frames := got / channels
	for i := 0; i < frames; i++ {
		if channels == 2 {
			samples[i][0] = float64(buf[i*2])
			samples[i][1] = float64(buf[i*2+1])
		} else {
			v := float64(buf[i])
			samples[i][0], samples[i][1] = v, v
		}
	}
	e.tapLocked(buf[:got])

	if got < need && e.current.EOF() {
		if e.next != nil {
			e.current.Close()
			e.current = e.next
			e.next = nil
			e.trackFinished.Store(true)
			n, ok := p.Stream(samples[frames:])
			return frames + n, ok || frames > 0
		}
		if got == 0 {
			e.trackFinished.Store(true)
			return 0, false
		}
	}
	return frames, true
}

func (p *pullStreamer) Err() error {
	if p.e.current != nil {
		return p.e.current.Err()
	}
	return nil
}

// tapLocked copies up to copyBufferSamples of the just-read audio into
// the visualization tap and bumps copySeq. Called from the output
// thread, under speaker's internal lock.
func (e *Engine) tapLocked(samples []float32) {
	e.copyMu.Lock()
	n := len(samples)
	if n > copyBufferSamples {
		n = copyBufferSamples
	}
	e.copyBuffer = append(e.copyBuffer[:0], samples[:n]...)
	e.copyMu.Unlock()
	e.copySeq.Add(1)
}

// CopyBuffer returns a snapshot of the most recent visualization tap and
// its sequence number.
func (e *Engine) CopyBuffer() ([]float32, uint64) {
	e.copyMu.Lock()
	defer e.copyMu.Unlock()
	out := make([]float32, len(e.copyBuffer))
	copy(out, e.copyBuffer)
	return out, e.copySeq.Load()
}

// IsTrackFinished reports and does not clear the track-finished flag.
func (e *Engine) IsTrackFinished() bool { return e.trackFinished.Load() }

// ClearTrackFinishedFlag clears the track-finished flag.
func (e *Engine) ClearTrackFinishedFlag() { e.trackFinished.Store(false) }

// Pause pauses playback.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing || e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.state = Paused
}

// Resume resumes paused playback.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused || e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	e.state = Playing
}

// Stop tears down playback and releases the current/next tracks.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Close stops playback and, if the device was ever initialized, stops
// the stderr capture initDevice started alongside it. Call once, at
// process teardown.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopLocked()
	initialized := e.initialized
	e.mu.Unlock()
	if initialized {
		stderr.Stop()
	}
}

func (e *Engine) stopLocked() {
	if e.decodeStop != nil {
		close(e.decodeStop)
		e.decodeWG.Wait()
		e.decodeStop = nil
	}
	if e.initialized {
		speaker.Clear()
	}
	var prevCur, prevNext *sound.Sound
	if e.initialized {
		speaker.Lock()
		prevCur, e.current = e.current, nil
		prevNext, e.next = e.next, nil
		speaker.Unlock()
	} else {
		prevCur, e.current = e.current, nil
		prevNext, e.next = e.next, nil
	}
	if prevCur != nil {
		prevCur.Close()
	}
	if prevNext != nil {
		prevNext.Close()
	}
	e.ctrl = nil
	e.state = Stopped
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Position returns the current playback position.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	return e.current.Format().SampleRate.D(int(e.current.CursorFrames()))
}

// Duration returns the current track's total duration.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	return e.current.Duration()
}

// ErrNoCurrentTrack is returned by Seek when nothing is loaded.
var ErrNoCurrentTrack = errors.New("engine: no current track")

// SeekAbsolute seeks to an absolute position in the current track,
// clamped to [0, duration]. The request is published lock-free to the
// Sound's decode side and applied on its next Pump.
func (e *Engine) SeekAbsolute(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return ErrNoCurrentTrack
	}
	frame := e.current.Format().SampleRate.N(pos)
	if e.volume != nil {
		speaker.Lock()
		e.volume.Silent = true
		speaker.Unlock()
	}
	e.current.RequestSeek(frame)
	go e.unmuteAfterSeek()
	return nil
}

// SeekRelative seeks by a delta from the current position.
func (e *Engine) SeekRelative(delta time.Duration) error {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return ErrNoCurrentTrack
	}
	pos := e.current.Format().SampleRate.D(int(e.current.CursorFrames()))
	e.mu.Unlock()
	return e.SeekAbsolute(pos + delta)
}

// unmuteAfterSeek briefly mutes output to hide the ring-refill glitch a
// seek causes, matching the teacher's mute/seek/sleep/unmute sequence.
func (e *Engine) unmuteAfterSeek() {
	time.Sleep(100 * time.Millisecond)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.volume != nil {
		speaker.Lock()
		e.volume.Silent = e.muted
		speaker.Unlock()
	}
}

// SetVolume sets the volume level, clamped to [0, 1.5] (beep's Volume
// effect is a multiplier, not a hard ceiling, so this stack allows mild
// amplification above unity same as the teacher's slider headroom).
func (e *Engine) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1.5 {
		level = 1.5
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volLevel = level
	if !e.muted && e.volume != nil {
		speaker.Lock()
		e.volume.Volume = levelToVolume(level)
		speaker.Unlock()
	}
}

// Volume returns the current volume level.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volLevel
}

// SetMuted sets the muted state.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
	if e.volume != nil {
		speaker.Lock()
		e.volume.Silent = muted
		speaker.Unlock()
	}
}

// Muted reports the current muted state.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// levelToVolume converts a 0-1.5 linear level to beep's logarithmic
// Volume scale (0 = unity, negative = attenuation, base 2).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	return math.Log2(level)
}

// Info returns a snapshot of the engine's observable state.
func (e *Engine) Info() BackendInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	info := BackendInfo{
		DeviceName: "default",
		XRuns:      e.xruns.Load(),
		Writes:     e.writes.Load(),
		IsActive:   e.state != Stopped,
		IsPlaying:  e.state == Playing,
		IsPaused:   e.state == Paused,
	}
	if e.initialized {
		info.SampleRate = int(e.speakerSR)
		info.BufferSize = e.speakerSR.N(period)
		info.PeriodSize = info.BufferSize
	}
	if e.current != nil {
		info.Channels = e.current.Format().NumChannels
		info.PCMFormat = fmt.Sprintf("%d-bit float", e.current.Format().Precision*8)
		info.CodecName = e.current.Codec()
		if info.SampleRate > 0 {
			info.LatencyMS = 1000 * float64(info.BufferSize) / float64(info.SampleRate)
		}
	}
	return info
}
