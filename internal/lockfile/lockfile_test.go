//go:build unix

package lockfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_SecondCallFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inlimbo.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAcquire_ReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inlimbo.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err)
	defer second.Release()
}

func TestRelease_NilLockIsSafe(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
