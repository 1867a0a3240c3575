package songmap

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Entry is one file the Directory Walker found: its path and the inode
// that identifies it for library-index purposes.
type Entry struct {
	Path  string
	Inode uint64
}

// Extractor pulls Metadata out of an audio file. internal/tags.Library
// implements this.
type Extractor interface {
	Extract(path string) (Metadata, error)
}

// BuildResult summarizes a Build call: the populated Index plus any
// per-file extraction errors, keyed by path. A file that fails
// extraction is skipped, not fatal to the build as a whole.
type BuildResult struct {
	Index  *Index
	Errors map[string]error
}

// Build walks entries, extracts metadata for each via x, and inserts the
// resulting songs into a fresh Index.
func Build(entries []Entry, x Extractor) *BuildResult {
	idx := New()
	errs := make(map[string]error)

	for _, e := range entries {
		md, err := x.Extract(e.Path)
		if err != nil {
			errs[e.Path] = err
			continue
		}
		md.FilePath = e.Path
		idx.Insert(md.Artist, md.Album, md.Disc, md.Track, &Song{
			Inode:    e.Inode,
			Metadata: md,
		})
	}

	return &BuildResult{Index: idx, Errors: errs}
}

// Summary renders a one-line, human-readable report of a Build call,
// e.g. "indexed 1,284 tracks, 3 failed", suitable for a scan command's
// terminal output.
func (r *BuildResult) Summary() string {
	ok := r.Index.Len()
	if len(r.Errors) == 0 {
		return fmt.Sprintf("indexed %s tracks", humanize.Comma(int64(ok)))
	}
	return fmt.Sprintf("indexed %s tracks, %s failed", humanize.Comma(int64(ok)), humanize.Comma(int64(len(r.Errors))))
}
