package workspace

import (
	"fmt"

	"github.com/gofrs/flock"

	"pixal/internal/config"
	"pixal/internal/services"
)

// Lock is a held workspace lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the workspace lock without waiting.
func AcquireLock(cfg *config.Config) (*Lock, error) {
	path := cfg.LockPath()
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrWorkspaceBusy, "", "acquire workspace lock",
			"another pixal command is using "+cfg.Paths.Workspace, nil)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks. Releasing a nil lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
