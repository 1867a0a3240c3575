// Package playback is the concurrency boundary between callers (CLI,
// MPRIS bridge) and the Audio Engine: it serializes every control call
// behind one mutex, owns the Handle table mapping opaque track handles
// to Songs, and turns the engine's track-finished flag into automatic
// advancement through the playlist.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inlimbo/core/internal/engine"
	"github.com/inlimbo/core/internal/playlist"
	"github.com/inlimbo/core/internal/songmap"
)

// Handle re-exports playlist.Handle: the service mints these, the
// playlist only stores them.
type Handle = playlist.Handle

// Errors returned by Service methods.
var (
	ErrEmptyQueue     = errors.New("playback: queue is empty")
	ErrNoCurrentTrack = errors.New("playback: no current track")
	ErrInvalidIndex   = errors.New("playback: invalid queue index")
	ErrUnknownHandle  = errors.New("playback: unknown handle")
)

// State mirrors engine.State at the service boundary.
type State = engine.State

const (
	StateStopped = engine.Stopped
	StatePlaying = engine.Playing
	StatePaused  = engine.Paused
)

// RepeatMode mirrors playlist.RepeatMode at the service boundary.
type RepeatMode = playlist.RepeatMode

const (
	RepeatOff = playlist.RepeatOff
	RepeatOne = playlist.RepeatOne
	RepeatAll = playlist.RepeatAll
)

// TrackInfo is a snapshot of the currently playing track for UI/MPRIS
// consumption.
type TrackInfo struct {
	Handle   Handle
	Metadata songmap.Metadata
	Position time.Duration
	Duration time.Duration
	State    State
	BackendInfo engine.BackendInfo
}

// Service is the Playback Service façade.
type Service struct {
	mu sync.Mutex

	eng   *engine.Engine
	queue *playlist.Playlist

	handles    map[Handle]*songmap.Song
	nextHandle uint64

	volume float64

	subs   []*Subscription
	subsMu sync.RWMutex

	watchStop chan struct{}
	watchWG   sync.WaitGroup

	sessionID string
}

// New creates a Service wrapping eng, with an empty playlist and handle
// table, and starts the background track-finished watcher.
func New(eng *engine.Engine) *Service {
	s := &Service{
		eng:       eng,
		queue:     playlist.New(),
		handles:   make(map[Handle]*songmap.Song),
		volume:    1.0,
		watchStop: make(chan struct{}),
		sessionID: uuid.NewString(),
	}
	s.watchWG.Add(1)
	go s.watchTrackFinished()
	return s
}

// SessionID returns a process-lifetime identifier for this Service
// instance, for correlating log lines and ErrorEvents across
// subscribers without leaking filesystem paths.
func (s *Service) SessionID() string {
	return s.sessionID
}

// RegisterTrack mints a new Handle for song and stores it in the handle
// table. The handle remains resolvable for the service's entire
// lifetime, even after the track leaves the playlist.
func (s *Service) RegisterTrack(song *songmap.Song) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	h := Handle(s.nextHandle)
	s.handles[h] = song
	return h
}

func (s *Service) resolveLocked(h Handle) (*songmap.Song, bool) {
	song, ok := s.handles[h]
	return song, ok
}

// AddToPlaylist appends handles to the queue without changing playback.
func (s *Service) AddToPlaylist(handles ...Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Add(handles...)
	s.emitQueueChange()
}

// RemoveFromPlaylist removes the queue entry at index. If it was the
// current track, the engine is asked to load whatever is now current
// (or stopped if the queue is now empty).
func (s *Service) RemoveFromPlaylist(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasCurrent := index == s.queue.CurrentIndex()
	if !s.queue.RemoveAt(index) {
		return ErrInvalidIndex
	}
	s.emitQueueChange()

	if !wasCurrent {
		return nil
	}
	return s.loadCurrentLocked()
}

// ClearPlaylist empties the queue and stops playback.
func (s *Service) ClearPlaylist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
	prev := s.eng.State()
	s.eng.Stop()
	s.emitStateChange(prev, s.eng.State())
	s.emitQueueChange()
}

// Start begins playback at the playlist's current track.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCurrentLocked()
}

func (s *Service) playCurrentLocked() error {
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	h, ok := s.queue.Current()
	if !ok {
		return ErrNoCurrentTrack
	}
	song, ok := s.resolveLocked(h)
	if !ok {
		return ErrUnknownHandle
	}

	prev := s.eng.State()
	if err := s.eng.Load(song.Metadata.FilePath); err != nil {
		s.emitError("play", song.Metadata.FilePath, err)
		return err
	}
	s.eng.SetVolume(s.volume)
	s.emitStateChange(prev, s.eng.State())
	s.queueNextLocked()
	return nil
}

func (s *Service) loadCurrentLocked() error {
	if s.queue.IsEmpty() {
		prev := s.eng.State()
		s.eng.Stop()
		s.emitStateChange(prev, s.eng.State())
		return nil
	}
	return s.playCurrentLocked()
}

// queueNextLocked eagerly prepares the track after current for gapless
// hand-off, best-effort.
func (s *Service) queueNextLocked() {
	tracks := s.queue.Handles()
	if len(tracks) < 2 {
		s.eng.ClearNext()
		return
	}
	nextIdx := (s.queue.CurrentIndex() + 1) % len(tracks)
	song, ok := s.resolveLocked(tracks[nextIdx])
	if !ok {
		return
	}
	_ = s.eng.QueueNext(song.Metadata.FilePath)
}

// PauseCurrent pauses playback.
func (s *Service) PauseCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.eng.State()
	s.eng.Pause()
	s.emitStateChange(prev, s.eng.State())
	return nil
}

// Stop stops playback.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.eng.State()
	s.eng.Stop()
	s.emitStateChange(prev, s.eng.State())
	return nil
}

// Restart reloads the current track from the beginning.
func (s *Service) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCurrentLocked()
}

// Toggle toggles between playing and paused, or starts playback if
// stopped.
func (s *Service) Toggle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.eng.State() {
	case engine.Playing:
		prev := s.eng.State()
		s.eng.Pause()
		s.emitStateChange(prev, s.eng.State())
		return nil
	case engine.Paused:
		prev := s.eng.State()
		s.eng.Resume()
		s.emitStateChange(prev, s.eng.State())
		return nil
	default:
		return s.playCurrentLocked()
	}
}

// NextTrack advances the playlist and, if playback was active, plays the
// new current track immediately (no gapless hand-off).
func (s *Service) NextTrack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.queue.Next)
}

// PreviousTrack moves to the previous track and, if playback was active,
// plays it immediately.
func (s *Service) PreviousTrack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.queue.Previous)
}

// RandomTrack jumps to a random track in the playlist.
func (s *Service) RandomTrack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.queue.JumpToRandom)
}

func (s *Service) advanceLocked(move func() (Handle, bool)) error {
	prevIdx := s.queue.CurrentIndex()
	wasActive := s.eng.State() != engine.Stopped

	if _, ok := move(); !ok {
		return ErrEmptyQueue
	}
	s.emitTrackChange(prevIdx)

	if !wasActive {
		return nil
	}
	return s.playCurrentLocked()
}

// nextTrackGaplessLocked advances the playlist and re-prepares the
// engine's eagerly-queued next track, without touching the engine's
// currently playing track: the output thread hands off on its own once
// the ring drains, no device reopen, no abrupt cut. Shared by
// NextTrackGapless and the track-finished watcher's post-hand-off
// catch-up.
func (s *Service) nextTrackGaplessLocked() {
	prevIdx := s.queue.CurrentIndex()
	if _, ok := s.queue.Next(); !ok {
		return
	}
	s.emitTrackChange(prevIdx)
	s.queueNextLocked()
}

// previousTrackGaplessLocked is nextTrackGaplessLocked's symmetric
// counterpart for moving to the previous track.
func (s *Service) previousTrackGaplessLocked() {
	prevIdx := s.queue.CurrentIndex()
	if _, ok := s.queue.Previous(); !ok {
		return
	}
	s.emitTrackChange(prevIdx)
	s.queueNextLocked()
}

// NextTrackGapless moves the playlist to the next track and hands the
// engine that track as its eagerly-prepared next, without stopping or
// reloading the device: the output thread performs the hand-off on its
// own once the currently playing track's ring drains.
func (s *Service) NextTrackGapless() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	s.nextTrackGaplessLocked()
	return nil
}

// PreviousTrackGapless is NextTrackGapless's symmetric counterpart for
// moving to the previous track.
func (s *Service) PreviousTrackGapless() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.IsEmpty() {
		return ErrEmptyQueue
	}
	s.previousTrackGaplessLocked()
	return nil
}

// SeekRelative seeks by a delta from the current position.
func (s *Service) SeekRelative(delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.SeekRelative(delta); err != nil {
		return err
	}
	s.emitPositionChange()
	return nil
}

// SeekAbsolute seeks to an absolute position in the current track.
func (s *Service) SeekAbsolute(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.SeekAbsolute(pos); err != nil {
		return err
	}
	s.emitPositionChange()
	return nil
}

// SetVolume sets the output volume level (clamped in the engine).
func (s *Service) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetVolume(level)
	s.volume = s.eng.Volume()
	s.emitModeChange()
}

// Volume returns the current volume level.
func (s *Service) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetRepeatMode sets the playlist's repeat mode.
func (s *Service) SetRepeatMode(mode RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetRepeat(mode)
	s.emitModeChange()
}

// RepeatMode returns the playlist's repeat mode.
func (s *Service) RepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Repeat()
}

// SetShuffle enables or disables shuffle.
func (s *Service) SetShuffle(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetShuffle(on)
	s.emitModeChange()
}

// Shuffle reports whether shuffle is enabled.
func (s *Service) Shuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Shuffle()
}

// IsTrackFinishedFlag reports the engine's track-finished flag without
// clearing it.
func (s *Service) IsTrackFinishedFlag() bool {
	return s.eng.IsTrackFinished()
}

// ClearTrackFinishedFlag clears the engine's track-finished flag.
func (s *Service) ClearTrackFinishedFlag() {
	s.eng.ClearTrackFinishedFlag()
}

// GetCurrentTrackInfo returns a full snapshot of the currently playing
// track and engine state.
func (s *Service) GetCurrentTrackInfo() (TrackInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.queue.Current()
	if !ok {
		return TrackInfo{}, false
	}
	song, ok := s.resolveLocked(h)
	if !ok {
		return TrackInfo{}, false
	}
	return TrackInfo{
		Handle:      h,
		Metadata:    song.Metadata,
		Position:    s.eng.Position(),
		Duration:    s.eng.Duration(),
		State:       s.eng.State(),
		BackendInfo: s.eng.Info(),
	}, true
}

// GetCurrentMetadata returns the current track's metadata.
func (s *Service) GetCurrentMetadata() (songmap.Metadata, bool) {
	info, ok := s.GetCurrentTrackInfo()
	if !ok {
		return songmap.Metadata{}, false
	}
	return info.Metadata, true
}

// GetMetadataAt resolves a Handle to its Song's metadata, even if the
// handle is no longer present in the playlist.
func (s *Service) GetMetadataAt(h Handle) (songmap.Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.resolveLocked(h)
	if !ok {
		return songmap.Metadata{}, false
	}
	return song.Metadata, true
}

// Queue returns the playlist's handles in order.
func (s *Service) Queue() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Handles()
}

// QueueIndex returns the playlist's current index.
func (s *Service) QueueIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CurrentIndex()
}

// State returns the engine's playback state.
func (s *Service) State() State { return s.eng.State() }

// Shutdown stops playback, stops the background watcher, and releases
// engine resources.
func (s *Service) Shutdown() error {
	close(s.watchStop)
	s.watchWG.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Close()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
	return nil
}

// watchTrackFinished polls the engine's track-finished flag and advances
// the playlist in lock-step whenever the engine performs (or needs) a
// transition, mirroring the teacher's poll-and-dispatch pattern.
func (s *Service) watchTrackFinished() {
	defer s.watchWG.Done()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.watchStop:
			return
		case <-ticker.C:
			if !s.eng.IsTrackFinished() {
				continue
			}
			s.eng.ClearTrackFinishedFlag()

			s.mu.Lock()
			s.nextTrackGaplessLocked()
			s.mu.Unlock()
		}
	}
}
