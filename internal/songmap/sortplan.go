package songmap

import "sort"

// ArtistMetric is a total order over the artist level.
type ArtistMetric int

const (
	ArtistLexAsc ArtistMetric = iota
	ArtistLexDesc
)

// AlbumMetric is a total order over the album level.
type AlbumMetric int

const (
	AlbumLexAsc AlbumMetric = iota
	AlbumLexDesc
	AlbumYearAsc
	AlbumYearDesc
)

// DiscMetric is a total order over the disc level.
type DiscMetric int

const (
	DiscAsc DiscMetric = iota
	DiscDesc
)

// TrackMetric is a total order over the track level.
type TrackMetric int

const (
	TrackAsc TrackMetric = iota
	TrackDesc
)

// SortPlan is the 4-tuple naming total orders over each hierarchy level.
// Applying a plan to an Index is always a permutation: it only changes
// the order ForEach* callbacks observe, never the set of songs.
type SortPlan struct {
	Artist ArtistMetric
	Album  AlbumMetric
	Disc   DiscMetric
	Track  TrackMetric
}

// DefaultSortPlan orders every level lexicographically/ascending.
func DefaultSortPlan() SortPlan {
	return SortPlan{
		Artist: ArtistLexAsc,
		Album:  AlbumLexAsc,
		Disc:   DiscAsc,
		Track:  TrackAsc,
	}
}

// ParseArtistMetric resolves a config-file metric name to its enumerant,
// falling back to lexicographic/ascending (with ok=false) for unknown
// names, per spec §6: "unknown names fall back to lex/asc with a warning".
func ParseArtistMetric(name string) (ArtistMetric, bool) {
	switch name {
	case "lex_asc", "":
		return ArtistLexAsc, true
	case "lex_desc":
		return ArtistLexDesc, true
	}
	return ArtistLexAsc, false
}

func ParseAlbumMetric(name string) (AlbumMetric, bool) {
	switch name {
	case "lex_asc", "":
		return AlbumLexAsc, true
	case "lex_desc":
		return AlbumLexDesc, true
	case "year_asc":
		return AlbumYearAsc, true
	case "year_desc":
		return AlbumYearDesc, true
	}
	return AlbumLexAsc, false
}

func ParseDiscMetric(name string) (DiscMetric, bool) {
	switch name {
	case "disc_asc", "":
		return DiscAsc, true
	case "disc_desc":
		return DiscDesc, true
	}
	return DiscAsc, false
}

func ParseTrackMetric(name string) (TrackMetric, bool) {
	switch name {
	case "track_asc", "":
		return TrackAsc, true
	case "track_desc":
		return TrackDesc, true
	}
	return TrackAsc, false
}

// albumYear returns the representative year for an album bucket: the
// smallest non-zero Year found among its songs, or 0 if none is set.
func albumYear(discs albumMap) int {
	year := 0
	for _, tracks := range discs {
		for _, inodes := range tracks {
			for _, s := range inodes {
				y := s.Metadata.Year
				if y > 0 && (year == 0 || y < year) {
					year = y
				}
			}
		}
	}
	return year
}

// OrderedArtists returns the index's artist names ordered per plan.Artist,
// with ties (only possible for non-lexicographic metrics, none of which
// exist at the artist level today) broken by the lexicographically
// smallest album name the artist holds.
func (idx *Index) OrderedArtists(plan SortPlan) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	names := make([]string, 0, len(idx.tree))
	for a := range idx.tree {
		names = append(names, a)
	}
	sort.Slice(names, func(i, j int) bool {
		if plan.Artist == ArtistLexDesc {
			return names[i] > names[j]
		}
		return names[i] < names[j]
	})
	return names
}

// OrderedAlbums returns artist's album names ordered per plan.Album, with
// ties broken lexicographically (the next-lower level's natural key is
// disc/track, which carries no naturally comparable string; album name
// itself is the stable tiebreak).
func (idx *Index) OrderedAlbums(artist string, plan SortPlan) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	albums, ok := idx.tree[artist]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(albums))
	for a := range albums {
		names = append(names, a)
	}

	switch plan.Album {
	case AlbumLexAsc:
		sort.Strings(names)
	case AlbumLexDesc:
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	case AlbumYearAsc, AlbumYearDesc:
		sort.Slice(names, func(i, j int) bool {
			yi, yj := albumYear(albums[names[i]]), albumYear(albums[names[j]])
			if yi == yj {
				return names[i] < names[j]
			}
			if plan.Album == AlbumYearAsc {
				return yi < yj
			}
			return yi > yj
		})
	}
	return names
}

// OrderedDiscs returns the disc numbers present for artist/album, ordered
// per plan.Disc.
func (idx *Index) OrderedDiscs(artist, album string, plan SortPlan) []int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	discs, ok := idx.tree[artist][album]
	if !ok {
		return nil
	}
	nums := make([]int, 0, len(discs))
	for d := range discs {
		nums = append(nums, d)
	}
	sort.Slice(nums, func(i, j int) bool {
		if plan.Disc == DiscDesc {
			return nums[i] > nums[j]
		}
		return nums[i] < nums[j]
	})
	return nums
}

// OrderedTracks returns the track numbers present for artist/album/disc,
// ordered per plan.Track.
func (idx *Index) OrderedTracks(artist, album string, disc int, plan SortPlan) []int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tracks, ok := idx.tree[artist][album][disc]
	if !ok {
		return nil
	}
	nums := make([]int, 0, len(tracks))
	for t := range tracks {
		nums = append(nums, t)
	}
	sort.Slice(nums, func(i, j int) bool {
		if plan.Track == TrackDesc {
			return nums[i] > nums[j]
		}
		return nums[i] < nums[j]
	})
	return nums
}

// ForEachArtist invokes fn for every artist in plan order. The order is
// computed under the read lock, which is released before fn is called,
// so fn may itself call other query methods (OrderedAlbums etc.).
func (idx *Index) ForEachArtist(plan SortPlan, fn func(artist string)) {
	for _, a := range idx.OrderedArtists(plan) {
		fn(a)
	}
}

// ForEachAlbum invokes fn for every album of artist in plan order.
func (idx *Index) ForEachAlbum(artist string, plan SortPlan, fn func(album string)) {
	for _, a := range idx.OrderedAlbums(artist, plan) {
		fn(a)
	}
}

// ForEachDisc invokes fn for every disc of artist/album in plan order.
func (idx *Index) ForEachDisc(artist, album string, plan SortPlan, fn func(disc int)) {
	for _, d := range idx.OrderedDiscs(artist, album, plan) {
		fn(d)
	}
}

// ForEachSong invokes fn for every song of artist/album/disc/track in
// plan order (inode order within the leaf level is unspecified, since
// spec only orders artist/album/disc/track).
func (idx *Index) ForEachSong(artist, album string, disc int, plan SortPlan, fn func(track int, song *Song)) {
	idx.mu.RLock()
	tracks, ok := idx.tree[artist][album][disc]
	idx.mu.RUnlock()
	if !ok {
		return
	}

	for _, t := range idx.OrderedTracks(artist, album, disc, plan) {
		idx.mu.RLock()
		inodes := tracks[t]
		songs := make([]*Song, 0, len(inodes))
		for _, s := range inodes {
			songs = append(songs, s)
		}
		idx.mu.RUnlock()
		for _, s := range songs {
			fn(t, s)
		}
	}
}
