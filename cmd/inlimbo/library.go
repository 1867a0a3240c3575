package main

import (
	"fmt"

	"github.com/inlimbo/core/internal/config"
	"github.com/inlimbo/core/internal/songmap"
	"github.com/inlimbo/core/internal/tags"
	"github.com/inlimbo/core/internal/walker"
)

// buildIndex walks loaded.Config.Library.Directory and extracts every
// music file found into a fresh songmap.Index, caching album art under
// artCacheDir (empty skips art extraction).
func buildIndex(loaded *config.Loaded, artCacheDir string) (*songmap.BuildResult, error) {
	entries, err := walker.Walk(loaded.Config.Library.Directory, walker.Options{
		IsMusicFile: tags.IsMusicFile,
	})
	if err != nil {
		return nil, fmt.Errorf("walk library directory: %w", err)
	}

	buildEntries := make([]songmap.Entry, len(entries))
	for i, e := range entries {
		buildEntries[i] = songmap.Entry{Path: e.Path, Inode: e.Inode}
	}

	lib := tags.Library{ArtCacheDir: artCacheDir}
	return songmap.Build(buildEntries, lib), nil
}

// loadOrBuildIndex loads the cached lib.bin for loaded's music
// directory, rebuilding (and resaving) it when the cache is missing,
// stale, or otherwise unreadable.
func loadOrBuildIndex(loaded *config.Loaded) (*songmap.Index, error) {
	musicDir := loaded.Config.Library.Directory
	libPath, err := config.LibBinPath()
	if err != nil {
		return nil, fmt.Errorf("resolve library cache path: %w", err)
	}

	if idx, err := songmap.Load(libPath, musicDir); err == nil {
		return idx, nil
	}

	artDir, err := config.ArtCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve art cache dir: %w", err)
	}
	result, err := buildIndex(loaded, artDir)
	if err != nil {
		return nil, err
	}
	if err := result.Index.Save(libPath, musicDir); err != nil {
		return nil, fmt.Errorf("save library cache: %w", err)
	}
	return result.Index, nil
}

// orderedSongs flattens idx into plan order: the same order a future
// client's library browser would render artist/album/disc/track in.
func orderedSongs(idx *songmap.Index, plan songmap.SortPlan) []*songmap.Song {
	var out []*songmap.Song
	idx.ForEachArtist(plan, func(artist string) {
		idx.ForEachAlbum(artist, plan, func(album string) {
			idx.ForEachDisc(artist, album, plan, func(disc int) {
				idx.ForEachSong(artist, album, disc, plan, func(_ int, song *songmap.Song) {
					out = append(out, song)
				})
			})
		})
	})
	return out
}
