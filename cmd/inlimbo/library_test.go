package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inlimbo/core/internal/songmap"
)

func TestOrderedSongsFollowsArtistAlbumDiscTrack(t *testing.T) {
	idx := songmap.New()
	idx.Insert("B Artist", "Album", 1, 2, &songmap.Song{Inode: 1, Metadata: songmap.Metadata{Title: "B2"}})
	idx.Insert("B Artist", "Album", 1, 1, &songmap.Song{Inode: 2, Metadata: songmap.Metadata{Title: "B1"}})
	idx.Insert("A Artist", "Album", 1, 1, &songmap.Song{Inode: 3, Metadata: songmap.Metadata{Title: "A1"}})

	songs := orderedSongs(idx, songmap.DefaultSortPlan())

	titles := make([]string, len(songs))
	for i, s := range songs {
		titles[i] = s.Metadata.Title
	}
	assert.Equal(t, []string{"A1", "B1", "B2"}, titles)
}

func TestOrderedSongsEmptyIndex(t *testing.T) {
	idx := songmap.New()
	assert.Empty(t, orderedSongs(idx, songmap.DefaultSortPlan()))
}
