// Package songmap implements the crash-recoverable, hierarchical music
// library index: artist -> album -> disc -> track -> inode -> Song.
//
// The in-memory Index is the authoritative library; lib.bin is its
// binary-serialized form, rebuilt whenever it is missing, stale, or
// describes a different music directory than the one configured.
package songmap

// Metadata carries everything the Metadata Extractor records about an
// audio file.
type Metadata struct {
	Title      string
	Artist     string
	Album      string
	Genre      string
	Comment    string
	Year       int
	Track      int
	TrackTotal int
	Disc       int
	DiscTotal  int
	Duration   float64 // seconds
	Bitrate    int     // kbps
	FilePath   string
	Lyrics     string
	ArtURL     string
}

// Song is the unit of library identity: a filesystem inode paired with
// the metadata extracted from the file that held it at index-build time.
type Song struct {
	Inode    uint64
	Metadata Metadata
}

// UnknownArtist, UnknownAlbum and UnknownGenre are the placeholder values
// the Metadata Extractor falls back to when tags are missing.
const (
	UnknownArtist = "<Unknown Artist>"
	UnknownAlbum  = "<Unknown Album>"
	UnknownGenre  = "<Unknown Genre>"
)

// DefaultDiscTrack is substituted for disc/track numbers that are zero
// or otherwise unknown, since the index's disc/track levels key on
// positive integers per the data model.
const DefaultDiscTrack = 1
