package tags

import "github.com/inlimbo/core/internal/songmap"

// Library implements songmap.Extractor: it reads a music file's tags
// and audio properties, and extracts (and caches) its embedded or
// folder-adjacent cover art, producing the songmap.Metadata the
// Library Indexer stores.
//
// ArtCacheDir is the directory cached art thumbnails are written to
// (see CacheCoverArt); an empty ArtCacheDir skips art extraction
// entirely, leaving Metadata.ArtURL empty.
type Library struct {
	ArtCacheDir string
}

// Extract satisfies songmap.Extractor.
func (l Library) Extract(path string) (songmap.Metadata, error) {
	info, err := ReadWithAudio(path)
	if err != nil {
		return songmap.Metadata{}, err
	}

	md := songmap.Metadata{
		Title:      info.Title,
		Artist:     info.Artist,
		Album:      info.Album,
		Genre:      info.Genre,
		Year:       info.Year(),
		Track:      info.TrackNumber,
		TrackTotal: info.TotalTracks,
		Disc:       info.DiscNumber,
		DiscTotal:  info.TotalDiscs,
		Duration:   info.Duration.Seconds(),
		FilePath:   path,
	}

	if l.ArtCacheDir != "" {
		if data, _, artErr := ExtractCoverArt(path); artErr == nil && data != nil {
			if artPath, cacheErr := CacheCoverArt(l.ArtCacheDir, path, data); cacheErr == nil {
				md.ArtURL = "file://" + artPath
			}
		}
	}

	return md, nil
}
