package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func musicExt(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".flac" || ext == ".mp3"
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestWalkFindsMusicFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Artist", "Album", "01.flac"))
	writeFile(t, filepath.Join(root, "Artist", "Album", "02.mp3"))
	writeFile(t, filepath.Join(root, "Artist", "Album", "cover.jpg"))

	entries, err := Walk(root, Options{IsMusicFile: musicExt})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Path, "01.flac")
	assert.Contains(t, entries[1].Path, "02.mp3")
}

func TestWalkAssignsDistinctInodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.flac"))
	writeFile(t, filepath.Join(root, "b.flac"))

	entries, err := Walk(root, Options{IsMusicFile: musicExt})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].Inode, entries[1].Inode)
}

func TestWalkSkipsUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.txt"))

	entries, err := Walk(root, Options{IsMusicFile: musicExt})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalkIgnoresSymlinksByDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	real := filepath.Join(root, "real.flac")
	writeFile(t, real)
	link := filepath.Join(root, "link.flac")
	require.NoError(t, os.Symlink(real, link))

	entries, err := Walk(root, Options{IsMusicFile: musicExt, Symlinks: SymlinkIgnore})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries[0].Path, "real.flac")
}

func TestWalkFollowsSymlinksWhenConfigured(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
	root := t.TempDir()
	real := filepath.Join(root, "real.flac")
	writeFile(t, real)
	link := filepath.Join(root, "link.flac")
	require.NoError(t, os.Symlink(real, link))

	entries, err := Walk(root, Options{IsMusicFile: musicExt, Symlinks: SymlinkFollow})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
