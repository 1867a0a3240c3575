package playback

import (
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlimbo/core/internal/engine"
	"github.com/inlimbo/core/internal/songmap"
)

func newTestService() *Service {
	return New(engine.New())
}

func TestSubscribe_ReturnsDistinctSubscriptions(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()

	a := svc.Subscribe()
	b := svc.Subscribe()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)
}

func TestAddToPlaylist_EmitsQueueChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		sub := svc.Subscribe()
		h := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{
			Title: "Alpha", FilePath: "/a.mp3", Duration: 120,
		}})
		svc.AddToPlaylist(h)

		qc := <-sub.QueueChanged
		require.Len(t, qc.Tracks, 1)
		assert.Equal(t, "Alpha", qc.Tracks[0].Title)
		assert.Equal(t, 0, qc.Index)
	})
}

func TestClearPlaylist_EmitsQueueChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		h := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/a.mp3"}})
		svc.AddToPlaylist(h)

		sub := svc.Subscribe()
		svc.ClearPlaylist()

		qc := <-sub.QueueChanged
		assert.Empty(t, qc.Tracks)
		assert.Equal(t, StateStopped, svc.State())
	})
}

func TestSetRepeatMode_EmitsModeChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		sub := svc.Subscribe()
		svc.SetRepeatMode(RepeatOne)

		mc := <-sub.ModeChanged
		assert.Equal(t, RepeatOne, mc.RepeatMode)
		assert.Equal(t, RepeatOne, svc.RepeatMode())
	})
}

func TestSetShuffle_EmitsModeChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		sub := svc.Subscribe()
		svc.SetShuffle(true)

		mc := <-sub.ModeChanged
		assert.True(t, mc.Shuffle)
		assert.True(t, svc.Shuffle())
	})
}

func TestRemoveFromPlaylist_NonCurrent_EmitsQueueChangeOnly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		h1 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/a.mp3", Title: "A"}})
		h2 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/b.mp3", Title: "B"}})
		svc.AddToPlaylist(h1, h2)

		sub := svc.Subscribe()
		require.NoError(t, svc.RemoveFromPlaylist(1))

		qc := <-sub.QueueChanged
		require.Len(t, qc.Tracks, 1)
		assert.Equal(t, "A", qc.Tracks[0].Title)
	})
}

func TestRemoveFromPlaylist_InvalidIndex(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()
	assert.ErrorIs(t, svc.RemoveFromPlaylist(0), ErrInvalidIndex)
}

func TestGetMetadataAt_ResolvesAfterRemoval(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()

	h := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/a.mp3", Title: "Alpha"}})
	svc.AddToPlaylist(h)
	require.NoError(t, svc.RemoveFromPlaylist(0))

	meta, ok := svc.GetMetadataAt(h)
	require.True(t, ok)
	assert.Equal(t, "Alpha", meta.Title)
}

func TestStart_EmptyQueue(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()
	assert.ErrorIs(t, svc.Start(), ErrEmptyQueue)
}

func TestNextTrackGapless_AdvancesWithoutLoadingEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		h1 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/a.mp3", Title: "A"}})
		h2 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/b.mp3", Title: "B"}})
		svc.AddToPlaylist(h1, h2)

		sub := svc.Subscribe()
		require.NoError(t, svc.NextTrackGapless())

		tc := <-sub.TrackChanged
		require.NotNil(t, tc.Current)
		assert.Equal(t, "B", tc.Current.Title)
		assert.Equal(t, 1, svc.QueueIndex())
		assert.Equal(t, StateStopped, svc.State())
	})
}

func TestNextTrackGapless_EmptyQueueErrors(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()
	assert.ErrorIs(t, svc.NextTrackGapless(), ErrEmptyQueue)
}

func TestPreviousTrackGapless_AdvancesWithoutLoadingEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc := newTestService()
		defer svc.Shutdown()

		h1 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/a.mp3", Title: "A"}})
		h2 := svc.RegisterTrack(&songmap.Song{Metadata: songmap.Metadata{FilePath: "/b.mp3", Title: "B"}})
		svc.AddToPlaylist(h1, h2)

		sub := svc.Subscribe()
		require.NoError(t, svc.NextTrackGapless())
		<-sub.TrackChanged // lands on B, index 1

		require.NoError(t, svc.PreviousTrackGapless())
		tc := <-sub.TrackChanged

		require.NotNil(t, tc.Current)
		assert.Equal(t, "A", tc.Current.Title)
		assert.Equal(t, 0, svc.QueueIndex())
	})
}

func TestPreviousTrackGapless_EmptyQueueErrors(t *testing.T) {
	svc := newTestService()
	defer svc.Shutdown()
	assert.ErrorIs(t, svc.PreviousTrackGapless(), ErrEmptyQueue)
}

func TestSessionID_StableAndDistinctAcrossServices(t *testing.T) {
	a := newTestService()
	defer a.Shutdown()
	b := newTestService()
	defer b.Shutdown()

	require.NotEmpty(t, a.SessionID())
	assert.Equal(t, a.SessionID(), a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
