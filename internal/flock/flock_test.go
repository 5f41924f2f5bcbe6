//go:build unix

package flock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhu-idc/idce2e/internal/errors"
)

func TestExclusive(t *testing.T) {
	t.Parallel()

	t.Run("fails when already held", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "site.lock")

		f1, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test temp dir
		require.NoError(t, err)
		defer func() { _ = f1.Close() }()
		require.NoError(t, Exclusive(f1.Fd()))
		defer func() { _ = Unlock(f1.Fd()) }()

		f2, err := os.OpenFile(path, os.O_RDWR, 0o600) // #nosec G304 -- test temp dir
		require.NoError(t, err)
		defer func() { _ = f2.Close() }()
		assert.Error(t, Exclusive(f2.Fd()))
	})

	t.Run("can be reacquired after unlock", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "site.lock")

		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test temp dir
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		require.NoError(t, Exclusive(f.Fd()))
		require.NoError(t, Unlock(f.Fd()))
		require.NoError(t, Exclusive(f.Fd()))
		assert.NoError(t, Unlock(f.Fd()))
	})
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locks", "idc.test.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = Acquire(path)
	require.ErrorIs(t, err, errors.ErrSiteBusy)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err)
	assert.NoError(t, second.Release())
}

func TestRelease_Nil(t *testing.T) {
	t.Parallel()

	var l *Lock
	assert.NoError(t, l.Release())
}
