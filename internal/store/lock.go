package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("data dir is in use by another engine")

// LockDataDir takes an exclusive lock on dir/engine.lock. Unlock the returned
// lock on shutdown.
func LockDataDir(dir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dir, "engine.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return fl, nil
}
