package flock

import (
	"os"
	"path/filepath"

	"github.com/jhu-idc/idce2e/internal/errors"
)

// Lock is a held lock file.
type Lock struct {
	f *os.File
}

// Acquire creates path if needed and takes an exclusive lock on it.
// Returns errors.ErrSiteBusy when another process holds the lock.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create lock directory")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- path derived from the idce2e home
	if err != nil {
		return nil, errors.Wrap(err, "failed to open lock file")
	}
	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(errors.ErrSiteBusy, "%s", path)
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the lock file. The file itself stays behind.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := Unlock(l.f.Fd())
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return errors.Wrap(unlockErr, "failed to unlock")
	}
	return closeErr
}
