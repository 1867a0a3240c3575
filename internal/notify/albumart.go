//go:build linux

package notify

import "github.com/inlimbo/core/internal/mpris"

// FindAlbumArtPath resolves the artwork to show in a desktop notification
// for a track. artURL is the library index's file:// URI of the cached
// art (songmap.Metadata.ArtURL) and is returned as is; when it is empty,
// this falls back to scanning the track's directory for a conventional
// cover file and returns that file's path.
func FindAlbumArtPath(trackPath, artURL string) string {
	if artURL != "" {
		return artURL
	}
	return mpris.FindAlbumArt(trackPath)
}
