package songmap

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
)

// snapshot is the on-disk shape of lib.bin: the tree plus the music
// directory it was built from, so Load can detect a stale cache without
// touching the filesystem beyond a single stat+read.
type snapshot struct {
	MusicDir string
	Tree     songTree
}

// ErrStaleLibrary is returned by Load when lib.bin describes a different
// music directory than musicDir, signalling the caller should rebuild.
var ErrStaleLibrary = errors.New("songmap: library cache describes a different music directory")

// Save gob-encodes idx to path, tagged with musicDir.
func (idx *Index) Save(path, musicDir string) error {
	idx.mu.RLock()
	snap := snapshot{MusicDir: musicDir, Tree: idx.tree}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(&snap)
	idx.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("songmap: encode: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("songmap: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("songmap: rename: %w", err)
	}
	return nil
}

// Load reads and gob-decodes path, returning ErrStaleLibrary if the
// encoded music directory doesn't match musicDir. Any read or decode
// error (missing file, truncated write, format change) is returned
// as-is; callers treat every non-nil error here as "rebuild the library".
func Load(path, musicDir string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("songmap: decode: %w", err)
	}
	if snap.MusicDir != musicDir {
		return nil, ErrStaleLibrary
	}
	if snap.Tree == nil {
		snap.Tree = songTree{}
	}
	return &Index{tree: snap.Tree}, nil
}
