package tags

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCacheCoverArt_WritesDownscaledThumbnail(t *testing.T) {
	dir := t.TempDir()
	data := fakeJPEG(t, 1200, 800)

	path, err := CacheCoverArt(dir, "/music/Artist/Album/01 Track.flac", data)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, artCacheSize)
	assert.LessOrEqual(t, cfg.Height, artCacheSize)
}

func TestCacheCoverArt_StableHashSkipsRewrite(t *testing.T) {
	dir := t.TempDir()
	data := fakeJPEG(t, 100, 100)
	path := "/music/Artist/Album/01 Track.flac"

	first, err := CacheCoverArt(dir, path, data)
	require.NoError(t, err)
	second, err := CacheCoverArt(dir, path, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCacheCoverArt_DistinctPathsDistinctNames(t *testing.T) {
	dir := t.TempDir()
	data := fakeJPEG(t, 100, 100)

	first, err := CacheCoverArt(dir, "/music/Artist/Album A/01 Track.flac", data)
	require.NoError(t, err)
	second, err := CacheCoverArt(dir, "/music/Artist/Album B/01 Track.flac", data)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCacheCoverArt_SmallImageNotUpscaled(t *testing.T) {
	dir := t.TempDir()
	data := fakeJPEG(t, 64, 64)

	path, err := CacheCoverArt(dir, "/music/Artist/Album/01 Track.flac", data)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
}
