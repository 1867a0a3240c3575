package playback

import "time"

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the playlist's current track changes.
//
// Emitted by:
//   - NextTrack/PreviousTrack/RandomTrack: on every successful move,
//     whether or not playback is active
//   - NextTrackGapless/PreviousTrackGapless: on every successful move
//   - the track-finished watcher: when the engine hands off to the next
//     track and the playlist advances
//
// NOT emitted by:
//   - Start/Restart/Toggle: (re)starting the current track does not emit
//   - PauseCurrent/Stop: state changes do not emit TrackChange
//
// Each move emits its own event; rapid navigation is not debounced.
//
// The app should handle all track-related side effects (notifications,
// scrobble, album art, lyrics) in response to this event.
type TrackChange struct {
	Previous      *Track
	Current       *Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode RepeatMode
	Shuffle    bool
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an error occurs during playback.
type ErrorEvent struct {
	Operation string // e.g., "play", "seek"
	Path      string // track path if applicable
	Err       error
}
