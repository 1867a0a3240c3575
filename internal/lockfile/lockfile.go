//go:build unix

// Package lockfile provides a single-instance gate via an advisory,
// non-blocking flock on a well-known file under the cache directory.
// A second inlimbo process started against the same config fails fast
// with ErrLocked instead of racing the first over lib.bin and the
// audio device.
package lockfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when another process already holds
// the lock.
var ErrLocked = errors.New("lockfile: another instance is already running")

// Lock holds an open, flock'd file descriptor. Release drops the lock
// and closes the file.
type Lock struct {
	file *os.File
}

// Acquire opens (creating if necessary) the file at path and takes a
// non-blocking exclusive flock on it. It returns ErrLocked if another
// process already holds the lock.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lockfile: open %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lockfile: flock %s: %w", path, err)
	}

	return &Lock{file: f}, nil
}

// Release unlocks and closes the underlying file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}
