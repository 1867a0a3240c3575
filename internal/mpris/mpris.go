//go:build linux

// Package mpris adapts the Playback Service to the MPRIS D-Bus media
// control interface, so desktop shells and media keys can discover and
// drive inlimbo like any other player.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/inlimbo/core/internal/playback"
)

// Adapter connects a playback.Service to MPRIS over D-Bus.
type Adapter struct {
	service *playback.Service
	server  *server.Server
	sub     *playback.Subscription
	done    chan struct{}
}

// New creates and starts a new MPRIS adapter bound to service.
func New(service *playback.Service) (*Adapter, error) {
	a := &Adapter{
		service: service,
		done:    make(chan struct{}),
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{service: service}

	a.server = server.NewServer("inlimbo", rootAdapter, playerAdapter)
	a.sub = service.Subscribe()

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }
func (r *rootAdapter) Quit() error  { return nil }

func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return "inlimbo", nil }

//nolint:revive // method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/opus", "audio/x-wav", "audio/mp4"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and its
// optional sub-interfaces, delegating every call straight to the
// Playback Service.
type playerAdapter struct {
	service *playback.Service
}

func (p *playerAdapter) Next() error     { return p.service.NextTrack() }
func (p *playerAdapter) Previous() error { return p.service.PreviousTrack() }
func (p *playerAdapter) Pause() error    { return p.service.PauseCurrent() }
func (p *playerAdapter) PlayPause() error {
	return p.service.Toggle()
}
func (p *playerAdapter) Stop() error { return p.service.Stop() }

func (p *playerAdapter) Play() error {
	if p.service.State() == playback.StateStopped {
		return p.service.Start()
	}
	return p.service.Toggle()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.service.SeekRelative(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.service.SeekAbsolute(time.Duration(position) * time.Microsecond)
}

//nolint:revive // method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.State() {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error       { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	info, ok := p.service.GetCurrentTrackInfo()
	if !ok {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(info.Metadata.FilePath)),
		Length:      types.Microseconds(info.Duration.Microseconds()),
		Title:       info.Metadata.Title,
		Artist:      []string{info.Metadata.Artist},
		Album:       info.Metadata.Album,
		TrackNumber: info.Metadata.Track,
	}

	if info.Metadata.ArtURL != "" {
		meta.ArtUrl = info.Metadata.ArtURL
	} else if artPath := FindAlbumArt(info.Metadata.FilePath); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.service.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.service.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	info, ok := p.service.GetCurrentTrackInfo()
	if !ok {
		return 0, nil
	}
	return info.Position.Microseconds(), nil
}

// CanGoNext and CanGoPrevious both report the playlist being non-empty:
// NextTrack/PreviousTrack wrap around a non-empty queue rather than
// stopping at its ends.
func (p *playerAdapter) CanGoNext() (bool, error) {
	return len(p.service.Queue()) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.service.Queue()) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.service.Queue()) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error)   { return true, nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.service.RepeatMode() {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.service.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.service.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.service.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.service.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.service.SetShuffle(shuffle)
	return nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
