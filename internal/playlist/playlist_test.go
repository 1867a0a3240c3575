package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaylistIsEmpty(t *testing.T) {
	p := New()
	assert.True(t, p.IsEmpty())
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestAddSetsCurrentToFirstTrack(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, Handle(1), cur)
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestNextWrapsAroundAtEnd(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(2)

	next, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, Handle(1), next, "Next must wrap to the first track")
}

func TestPreviousWrapsAroundAtStart(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(0)

	prev, ok := p.Previous()
	require.True(t, ok)
	assert.Equal(t, Handle(3), prev, "Previous must wrap to the last track")
}

func TestRepeatOneReturnsSameTrack(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(1)
	p.SetRepeat(RepeatOne)

	next, _ := p.Next()
	assert.Equal(t, Handle(2), next)
	prev, _ := p.Previous()
	assert.Equal(t, Handle(2), prev)
}

func TestRemoveAtCurrentKeepsIndexPointingAtNext(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(1)

	require.True(t, p.RemoveAt(1))
	assert.Equal(t, 1, p.CurrentIndex())
	cur, _ := p.Current()
	assert.Equal(t, Handle(3), cur)
}

func TestRemoveAtCurrentClampsWhenLastTrackRemoved(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(2)

	require.True(t, p.RemoveAt(2))
	assert.Equal(t, 1, p.CurrentIndex())
}

func TestRemoveAtBeforeCurrentShiftsIndexDown(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.JumpTo(2)

	require.True(t, p.RemoveAt(0))
	assert.Equal(t, 1, p.CurrentIndex())
	cur, _ := p.Current()
	assert.Equal(t, Handle(3), cur)
}

func TestUndoRevertsAdd(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	require.True(t, p.Undo())
	assert.True(t, p.IsEmpty())
	assert.False(t, p.CanUndo())
}

func TestRedoReappliesUndoneEdit(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.Undo()
	require.True(t, p.Redo())
	assert.Equal(t, 3, p.Len())
}

func TestNewEditAfterUndoDiscardsRedoHistory(t *testing.T) {
	p := New()
	p.Add(1)
	p.Undo()
	p.Add(2)
	assert.False(t, p.CanRedo())
}

func TestJumpToRandomNeverPicksCurrentWhenMultipleTracks(t *testing.T) {
	p := New()
	p.Add(1, 2, 3, 4, 5)
	p.JumpTo(2)
	for i := 0; i < 50; i++ {
		idx, ok := p.RandomIndex()
		require.True(t, ok)
		assert.NotEqual(t, 2, idx)
	}
}

func TestShuffleMakesNextPickRandomly(t *testing.T) {
	p := New()
	p.Add(1, 2, 3)
	p.SetShuffle(true)
	p.JumpTo(0)

	seen := map[Handle]bool{}
	for i := 0; i < 50; i++ {
		p.JumpTo(0)
		h, ok := p.Next()
		require.True(t, ok)
		seen[h] = true
	}
	assert.True(t, len(seen) > 1, "expected shuffle to eventually pick more than one track")
}
