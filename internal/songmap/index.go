package songmap

import "sync"

// trackMap is the innermost level: one or more songs sharing the same
// (artist, album, disc, track) key, distinguished by inode.
type trackMap map[uint64]*Song

// discMap maps track number -> trackMap.
type discMap map[int]trackMap

// albumMap maps disc number -> discMap.
type albumMap map[int]discMap

// artistMap maps album name -> albumMap.
type artistMap map[string]albumMap

// songTree maps artist name -> artistMap. It is the raw shape that gets
// gob-encoded; Index wraps it with a lock and query/mutation methods.
type songTree map[string]artistMap

// Index is the in-memory hierarchical library: artist -> album -> disc ->
// track -> inode -> Song, guarded by a single RWMutex. Many readers
// (ForEach*, Ordered*) may run concurrently; mutation (Insert,
// ReplaceSong) holds the writer lock exclusively. Sorting does not
// reorder the tree: the Ordered* queries sort a copy of the keys under
// the read lock.
type Index struct {
	mu   sync.RWMutex
	tree songTree
}

// New creates an empty Index.
func New() *Index {
	return &Index{tree: songTree{}}
}

// Insert places song at artist/album/disc/track/inode. Disc and track
// numbers ≤ 0 are normalized to DefaultDiscTrack per the data model.
func (idx *Index) Insert(artist, album string, disc, track int, song *Song) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.insertLocked(artist, album, disc, track, song)
}

// Len returns the total number of songs in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, albums := range idx.tree {
		for _, discs := range albums {
			for _, tracks := range discs {
				for _, inodes := range tracks {
					n += len(inodes)
				}
			}
		}
	}
	return n
}

// Songs returns every song in the index, in unspecified order. Used by
// tests and by callers that need a flat snapshot (e.g. for shuffling).
func (idx *Index) Songs() []*Song {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*Song
	for _, albums := range idx.tree {
		for _, discs := range albums {
			for _, tracks := range discs {
				for _, inodes := range tracks {
					for _, s := range inodes {
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}
