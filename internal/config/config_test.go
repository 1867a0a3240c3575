package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlimbo/core/internal/songmap"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/music", filepath.Join(home, "music")},
		{"absolute path unchanged", "/usr/local/music", "/usr/local/music"},
		{"relative path unchanged", "music/albums", "music/albums"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestPaths_LastIsWorkingDirConfig(t *testing.T) {
	paths := Paths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
}

func withTempConfig(t *testing.T, content string) {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
	require.NoError(t, os.WriteFile("config.toml", []byte(content), 0o600))
}

func TestLoad_EmptyConfig(t *testing.T) {
	withTempConfig(t, "")

	loaded, err := Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, defaultFuzzyMaxDist, loaded.Config.Fuzzy.MaxDist)
	assert.Equal(t, songmap.DefaultSortPlan(), loaded.SortPlan)
	assert.Empty(t, loaded.Warnings)
}

func TestLoad_LibraryDirectoryExpansion(t *testing.T) {
	withTempConfig(t, `
[library]
directory = "~/music"
`)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "music"), loaded.Config.Library.Directory)
}

func TestLoad_SortMetricsResolved(t *testing.T) {
	withTempConfig(t, `
[sort]
artist = "lex_desc"
album = "year_asc"
disc = "disc_desc"
track = "track_desc"
`)
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, songmap.ArtistLexDesc, loaded.SortPlan.Artist)
	assert.Equal(t, songmap.AlbumYearAsc, loaded.SortPlan.Album)
	assert.Equal(t, songmap.DiscDesc, loaded.SortPlan.Disc)
	assert.Equal(t, songmap.TrackDesc, loaded.SortPlan.Track)
	assert.Empty(t, loaded.Warnings)
}

func TestLoad_UnknownSortMetricFallsBackWithWarning(t *testing.T) {
	withTempConfig(t, `
[sort]
artist = "bogus"
`)
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, songmap.ArtistLexAsc, loaded.SortPlan.Artist)
	require.Len(t, loaded.Warnings, 1)
	assert.Equal(t, "sort.artist", loaded.Warnings[0].Key)
}

func TestLoad_FuzzyMaxDist(t *testing.T) {
	withTempConfig(t, `
[fuzzy]
max_dist = 4
`)
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Config.Fuzzy.MaxDist)
}

func TestLoad_InvalidToml(t *testing.T) {
	withTempConfig(t, "invalid = [[[")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(originalWd) }()

	loaded, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}
