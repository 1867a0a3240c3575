package songmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExtractor struct {
	fail map[string]error
}

func (f failingExtractor) Extract(path string) (Metadata, error) {
	if err, ok := f.fail[path]; ok {
		return Metadata{}, err
	}
	return Metadata{Artist: "Artist", Album: "Album", Track: 1}, nil
}

func TestBuildSkipsFailedExtractionsAndInsertsTheRest(t *testing.T) {
	entries := []Entry{
		{Path: "/a.mp3", Inode: 1},
		{Path: "/b.mp3", Inode: 2},
		{Path: "/bad.mp3", Inode: 3},
	}
	x := failingExtractor{fail: map[string]error{"/bad.mp3": errors.New("corrupt frame")}}

	result := Build(entries, x)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Index.Len())
	require.Len(t, result.Errors, 1)
	assert.EqualError(t, result.Errors["/bad.mp3"], "corrupt frame")
}

func TestBuildSetsFilePathFromEntry(t *testing.T) {
	entries := []Entry{{Path: "/music/song.flac", Inode: 7}}
	result := Build(entries, failingExtractor{})

	songs := result.Index.Songs()
	require.Len(t, songs, 1)
	assert.Equal(t, "/music/song.flac", songs[0].Metadata.FilePath)
}

func TestBuildResultSummary(t *testing.T) {
	entries := []Entry{
		{Path: "/a.mp3", Inode: 1},
		{Path: "/bad.mp3", Inode: 2},
	}
	x := failingExtractor{fail: map[string]error{"/bad.mp3": errors.New("boom")}}

	result := Build(entries, x)
	assert.Equal(t, "indexed 1 tracks, 1 failed", result.Summary())
}

func TestBuildResultSummaryNoFailures(t *testing.T) {
	entries := []Entry{{Path: "/a.mp3", Inode: 1}}
	result := Build(entries, failingExtractor{})
	assert.Equal(t, "indexed 1 tracks", result.Summary())
}
