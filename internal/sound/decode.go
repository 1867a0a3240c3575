// Package sound decodes a single audio file into PCM samples and exposes
// it as a Sound: a seekable, closeable source the Audio Engine pulls
// from. It wraps format-specific decoders (MP3, FLAC, Ogg Vorbis, Opus,
// M4A/AAC, M4A/ALAC, WAV) behind one beep.StreamSeekCloser interface.
package sound

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

// Supported file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtWAV  = ".wav"
	ExtWMA  = ".wma"
)

// IsDecodable reports whether ext has a decode path. WMA is tag-readable
// (internal/tags) but has no decoder in this stack: no pure-Go or
// cgo-free WMA decoder exists among the libraries this module depends
// on, so WMA files are indexed and tagged but cannot be played.
func IsDecodable(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4, ExtWAV:
		return true
	}
	return false
}

// Open opens path and decodes it into a Sound ready to be pulled from an
// engine's output loop. The codec name identifies the actual codec used
// (relevant for M4A, which may carry AAC or ALAC, and Ogg, which may
// carry Vorbis or Opus).
func Open(path string) (*Sound, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsDecodable(ext) {
		return nil, fmt.Errorf("sound: unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	codec := strings.ToUpper(strings.TrimPrefix(ext, "."))

	switch ext {
	case ExtMP3:
		streamer, format, err = DecodeMP3(f)
	case ExtFLAC:
		if serr := skipID3v2(f); serr != nil {
			f.Close()
			return nil, serr
		}
		streamer, format, err = flac.Decode(f)
	case ExtWAV:
		streamer, format, err = wav.Decode(f)
	case ExtOPUS, ExtOGG, ExtOGA:
		streamer, format, err = DecodeOgg(f)
		if err == nil {
			if isOpusStream(path) {
				codec = "OPUS"
			} else {
				codec = "VORBIS"
			}
		}
	case ExtM4A, ExtMP4:
		streamer, format, codec, err = DecodeM4A(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return NewSound(path, codec, streamer, format, DefaultRingCapacity), nil
}

// DefaultRingCapacity is the ring buffer size, in interleaved samples,
// used for tracks opened via Open. At 44.1kHz stereo this holds roughly
// a third of a second of audio, comfortably ahead of beep's own output
// buffer (speaker.Init's bufSize, typically 100ms).
const DefaultRingCapacity = 1 << 15

// isOpusStream peeks at an .ogg/.opus file's first packet to tell Opus
// apart from Vorbis, without fully decoding it.
func isOpusStream(path string) bool {
	return IsValidOpusFile(path)
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// Some taggers prepend ID3v2 to FLAC files, which beep's FLAC decoder
// doesn't expect.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

// Duration is a convenience alias used by callers that only have a
// beep.Format and a sample count (e.g. before a Sound exists).
func Duration(format beep.Format, samples int) time.Duration {
	return format.SampleRate.D(samples)
}
