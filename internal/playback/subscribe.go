package playback

import "time"

// secondsToDuration converts a fractional-seconds duration, as stored in
// songmap.Metadata, into a time.Duration.
func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// Subscribe creates a new event subscription. The subscription's
// channels are closed (via its Done channel) when Shutdown is called.
func (s *Service) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// trackFromHandle builds the Subscription-facing Track snapshot for a
// Handle, or nil if the handle does not resolve (e.g. the queue is
// empty). Must be called while holding s.mu.
func (s *Service) trackFromHandle(h Handle, ok bool) *Track {
	if !ok {
		return nil
	}
	song, found := s.resolveLocked(h)
	if !found {
		return nil
	}
	m := song.Metadata
	return &Track{
		ID:          int64(h),
		Path:        m.FilePath,
		Title:       m.Title,
		Artist:      m.Artist,
		Album:       m.Album,
		TrackNumber: m.Track,
		Duration:    secondsToDuration(m.Duration),
	}
}

// emitStateChange notifies subscribers of a playback-state transition.
// Must be called while holding s.mu.
func (s *Service) emitStateChange(prev, curr State) {
	if prev == curr {
		return
	}
	e := StateChange{Previous: prev, Current: curr}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendState(e)
	}
	s.subsMu.RUnlock()
}

// emitTrackChange notifies subscribers that the current queue position
// moved from prevIdx to the queue's now-current index. Must be called
// while holding s.mu, after the move has already happened.
func (s *Service) emitTrackChange(prevIdx int) {
	currIdx := s.queue.CurrentIndex()
	if prevIdx == currIdx {
		return
	}
	prevH, prevOK := Handle(0), false
	if prevIdx >= 0 {
		if handles := s.queue.Handles(); prevIdx < len(handles) {
			prevH, prevOK = handles[prevIdx], true
		}
	}
	currH, currOK := s.queue.Current()

	e := TrackChange{
		Previous:      s.trackFromHandle(prevH, prevOK),
		Current:       s.trackFromHandle(currH, currOK),
		PreviousIndex: prevIdx,
		Index:         currIdx,
	}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
	s.subsMu.RUnlock()
}

// emitPositionChange notifies subscribers of the engine's current
// playback position. Must be called while holding s.mu.
func (s *Service) emitPositionChange() {
	pos := s.eng.Position()
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendPosition(pos)
	}
	s.subsMu.RUnlock()
}

// emitModeChange notifies subscribers of a repeat/shuffle mode change.
// Must be called while holding s.mu.
func (s *Service) emitModeChange() {
	e := ModeChange{
		RepeatMode: s.queue.Repeat(),
		Shuffle:    s.queue.Shuffle(),
	}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendMode(e)
	}
	s.subsMu.RUnlock()
}

// emitQueueChange notifies subscribers that the queue's contents
// changed. Must be called while holding s.mu.
func (s *Service) emitQueueChange() {
	handles := s.queue.Handles()
	tracks := make([]Track, 0, len(handles))
	for _, h := range handles {
		if t := s.trackFromHandle(h, true); t != nil {
			tracks = append(tracks, *t)
		}
	}
	e := QueueChange{
		Tracks: tracks,
		Index:  s.queue.CurrentIndex(),
	}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendQueue(e)
	}
	s.subsMu.RUnlock()
}

// emitError notifies subscribers that op failed for the track at path.
// Must be called while holding s.mu.
func (s *Service) emitError(op, path string, err error) {
	e := ErrorEvent{Operation: op, Path: path, Err: err}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
	s.subsMu.RUnlock()
}
