package songmap

import "fmt"

// Writer persists an updated Metadata back to its source file's tags.
// internal/tags.Library implements this.
type Writer interface {
	Write(path string, md Metadata) error
}

// ReplaceSong calls w.Write to persist updated to disk before mutating
// the in-memory tree, and relocates the song if artist/album/disc/track
// changed as a result of the edit. The two halves never observably
// diverge, since a failed disk write leaves the index untouched.
func (idx *Index) ReplaceSong(w Writer, artist, album string, disc, track int, inode uint64, updated Metadata) error {
	idx.mu.Lock()
	inodes, ok := idx.tree[artist][album][disc][track]
	if !ok {
		idx.mu.Unlock()
		return fmt.Errorf("songmap: no song at %s/%s disc %d track %d", artist, album, disc, track)
	}
	old, ok := inodes[inode]
	if !ok {
		idx.mu.Unlock()
		return fmt.Errorf("songmap: no song with inode %d at %s/%s disc %d track %d", inode, artist, album, disc, track)
	}
	path := old.Metadata.FilePath
	idx.mu.Unlock()

	updated.FilePath = path
	if err := w.Write(path, updated); err != nil {
		return fmt.Errorf("songmap: write tags: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	// re-resolve: a concurrent sort/mutation could have touched the tree
	// between unlock and relock, though not the song itself (callers are
	// expected to serialize edits through a single path).
	if tracks, ok := idx.tree[artist][album][disc]; ok {
		if inodes, ok := tracks[track]; ok {
			delete(inodes, inode)
			if len(inodes) == 0 {
				delete(tracks, track)
			}
		}
		if len(tracks) == 0 {
			delete(idx.tree[artist][album], disc)
			if len(idx.tree[artist][album]) == 0 {
				delete(idx.tree[artist], album)
				if len(idx.tree[artist]) == 0 {
					delete(idx.tree, artist)
				}
			}
		}
	}

	idx.insertLocked(updated.Artist, updated.Album, updated.Disc, updated.Track, &Song{
		Inode:    inode,
		Metadata: updated,
	})
	return nil
}

// insertLocked is Insert's body without the locking, for callers that
// already hold idx.mu.
func (idx *Index) insertLocked(artist, album string, disc, track int, song *Song) {
	if artist == "" {
		artist = UnknownArtist
	}
	if album == "" {
		album = UnknownAlbum
	}
	if disc <= 0 {
		disc = DefaultDiscTrack
	}
	if track <= 0 {
		track = DefaultDiscTrack
	}

	albums, ok := idx.tree[artist]
	if !ok {
		albums = artistMap{}
		idx.tree[artist] = albums
	}
	discs, ok := albums[album]
	if !ok {
		discs = albumMap{}
		albums[album] = discs
	}
	tracks, ok := discs[disc]
	if !ok {
		tracks = discMap{}
		discs[disc] = tracks
	}
	inodes, ok := tracks[track]
	if !ok {
		inodes = trackMap{}
		tracks[track] = inodes
	}
	inodes[song.Inode] = song
}
