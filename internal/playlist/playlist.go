// Package playlist holds the ordered queue of track handles the
// Playback Service plays through: current index, repeat/shuffle modes,
// and wrap-around next/previous navigation.
package playlist

import "math/rand"

// Handle is an opaque id minted by the Playback Service when a Song is
// registered. The playlist only ever stores Handles, never Song values;
// resolving a Handle to its metadata is the service's job.
type Handle uint64

// RepeatMode controls what Next does at a track boundary.
type RepeatMode int

const (
	// RepeatOff wraps to the first track (§4.6 mandates wrap-around).
	RepeatOff RepeatMode = iota
	// RepeatOne keeps replaying the current track.
	RepeatOne
	// RepeatAll is equivalent to RepeatOff in this queue model: wrapping
	// is always on, so "repeat all" and "off" differ only in how a UI
	// labels the button.
	RepeatAll
)

const maxHistory = 50

// Playlist is {tracks: [Handle], current: usize} plus the repeat/shuffle
// modes and an undo/redo snapshot stack over queue edits.
type Playlist struct {
	tracks  []Handle
	current int // -1 if empty

	repeat  RepeatMode
	shuffle bool

	history []snapshot
	histPos int // index of current state in history; -1 before any snapshot
}

type snapshot struct {
	tracks  []Handle
	current int
}

// New creates an empty Playlist, with the empty state as history entry 0.
func New() *Playlist {
	p := &Playlist{current: -1}
	p.history = []snapshot{{current: -1}}
	p.histPos = 0
	return p
}

// Len returns the number of queued handles.
func (p *Playlist) Len() int { return len(p.tracks) }

// IsEmpty reports whether the queue has no tracks.
func (p *Playlist) IsEmpty() bool { return len(p.tracks) == 0 }

// Current returns the handle at the current index, and whether one
// exists.
func (p *Playlist) Current() (Handle, bool) {
	if p.current < 0 || p.current >= len(p.tracks) {
		return 0, false
	}
	return p.tracks[p.current], true
}

// CurrentIndex returns the current index (-1 if empty).
func (p *Playlist) CurrentIndex() int { return p.current }

// Handles returns a copy of the queued handles in order.
func (p *Playlist) Handles() []Handle {
	out := make([]Handle, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// push saves a snapshot of the current (post-edit) state, discarding any
// redo states past it, and trims to maxHistory entries.
func (p *Playlist) push() {
	snap := snapshot{tracks: append([]Handle(nil), p.tracks...), current: p.current}
	if p.histPos < len(p.history)-1 {
		p.history = p.history[:p.histPos+1]
	}
	p.history = append(p.history, snap)
	p.histPos = len(p.history) - 1
	if len(p.history) > maxHistory {
		excess := len(p.history) - maxHistory
		p.history = p.history[excess:]
		p.histPos -= excess
	}
}

// Add appends handles to the queue without changing playback.
func (p *Playlist) Add(handles ...Handle) {
	p.tracks = append(p.tracks, handles...)
	if p.current < 0 && len(p.tracks) > 0 {
		p.current = 0
	}
	p.push()
}

// Replace clears the queue, adds handles, and sets current to 0.
func (p *Playlist) Replace(handles ...Handle) {
	p.tracks = append([]Handle(nil), handles...)
	if len(p.tracks) == 0 {
		p.current = -1
	} else {
		p.current = 0
	}
	p.push()
}

// Clear removes every track and resets playback.
func (p *Playlist) Clear() {
	p.tracks = nil
	p.current = -1
	p.push()
}

// RemoveAt removes the handle at index, adjusting current per spec: if
// the removed slot was before current, current shifts down by one; if
// it was the current slot, current stays (now pointing at what used to
// be the next track) and is clamped if that runs past the new end.
func (p *Playlist) RemoveAt(index int) bool {
	if index < 0 || index >= len(p.tracks) {
		return false
	}
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)

	switch {
	case p.current > index:
		p.current--
	case p.current == index:
		if p.current >= len(p.tracks) {
			p.current = len(p.tracks) - 1
		}
	}
	p.push()
	return true
}

// JumpTo sets current to index.
func (p *Playlist) JumpTo(index int) bool {
	if index < 0 || index >= len(p.tracks) {
		return false
	}
	p.current = index
	return true
}

// Next advances to the next track, wrapping to the first track once the
// end is reached (the spec-mandated divergence from a non-wrapping
// queue). Returns false if the queue is empty.
func (p *Playlist) Next() (Handle, bool) {
	if len(p.tracks) == 0 {
		return 0, false
	}
	if p.repeat == RepeatOne {
		return p.tracks[p.current], true
	}
	if p.shuffle {
		return p.JumpToRandom()
	}
	p.current = (p.current + 1) % len(p.tracks)
	return p.tracks[p.current], true
}

// Previous moves to the previous track, wrapping to the last track once
// the start is reached.
func (p *Playlist) Previous() (Handle, bool) {
	if len(p.tracks) == 0 {
		return 0, false
	}
	if p.repeat == RepeatOne {
		return p.tracks[p.current], true
	}
	p.current = (p.current - 1 + len(p.tracks)) % len(p.tracks)
	return p.tracks[p.current], true
}

// RandomIndex returns a random valid index into the queue, distinct from
// the current index when the queue has more than one track.
func (p *Playlist) RandomIndex() (int, bool) {
	if len(p.tracks) == 0 {
		return 0, false
	}
	if len(p.tracks) == 1 {
		return 0, true
	}
	for {
		i := rand.Intn(len(p.tracks))
		if i != p.current {
			return i, true
		}
	}
}

// JumpToRandom jumps to a random track and returns its handle.
func (p *Playlist) JumpToRandom() (Handle, bool) {
	i, ok := p.RandomIndex()
	if !ok {
		return 0, false
	}
	p.current = i
	return p.tracks[i], true
}

// SetRepeat sets the repeat mode.
func (p *Playlist) SetRepeat(mode RepeatMode) { p.repeat = mode }

// Repeat returns the current repeat mode.
func (p *Playlist) Repeat() RepeatMode { return p.repeat }

// SetShuffle enables or disables shuffle-on-advance.
func (p *Playlist) SetShuffle(on bool) { p.shuffle = on }

// Shuffle reports whether shuffle-on-advance is enabled.
func (p *Playlist) Shuffle() bool { return p.shuffle }

// CanUndo reports whether Undo would succeed (there is a state before
// the current one in history).
func (p *Playlist) CanUndo() bool { return p.histPos > 0 }

// CanRedo reports whether Redo would succeed.
func (p *Playlist) CanRedo() bool { return p.histPos < len(p.history)-1 }

// Undo reverts to the state before the last Add/Replace/Clear/RemoveAt.
func (p *Playlist) Undo() bool {
	if !p.CanUndo() {
		return false
	}
	p.histPos--
	snap := p.history[p.histPos]
	p.tracks = append([]Handle(nil), snap.tracks...)
	p.current = snap.current
	return true
}

// Redo reapplies the last undone edit.
func (p *Playlist) Redo() bool {
	if !p.CanRedo() {
		return false
	}
	p.histPos++
	snap := p.history[p.histPos]
	p.tracks = append([]Handle(nil), snap.tracks...)
	p.current = snap.current
	return true
}
