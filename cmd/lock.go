package cmd

import (
	"fmt"

	"github.com/alexflint/go-filemutex"
)

// acquireLock takes the single instance lock at path without blocking.
func acquireLock(path string) (func(), error) {
	m, err := filemutex.New(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create lock file %s: %w", path, err)
	}
	if err := m.TryLock(); err != nil {
		m.Close()
		return nil, fmt.Errorf("another wacom-profile is already running (lock %s): %w", path, err)
	}
	return func() {
		m.Unlock()
		m.Close()
	}, nil
}
