package tags

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for image.Decode
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// artCacheSize is the longest edge, in pixels, of a cached art
// thumbnail. Original art (often several megapixels for FLAC rips) is
// downscaled once at index-build time rather than repeatedly at
// display time.
const artCacheSize = 512

// CacheCoverArt decodes data (jpeg or png), downscales it to fit within
// artCacheSize on its longest edge, and writes it as a jpeg under
// cacheDir named by the hash of path, the source audio file it was
// extracted from. It returns the path written, which is stable across
// re-scans of an unchanged file (same source path -> same hash -> same
// path, no rewrite beyond the first).
func CacheCoverArt(cacheDir, path string, data []byte) (string, error) {
	sum := sha1.Sum([]byte(path))
	destPath := filepath.Join(cacheDir, hex.EncodeToString(sum[:])+".jpg")

	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("tags: decode art: %w", err)
	}

	bounds := img.Bounds()
	thumb := img
	if bounds.Dx() > artCacheSize || bounds.Dy() > artCacheSize {
		if bounds.Dx() >= bounds.Dy() {
			thumb = resize.Resize(artCacheSize, 0, img, resize.Lanczos3)
		} else {
			thumb = resize.Resize(0, artCacheSize, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("tags: encode art: %w", err)
	}

	tmp := destPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("tags: write art: %w", err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		return "", fmt.Errorf("tags: rename art: %w", err)
	}
	return destPath, nil
}
