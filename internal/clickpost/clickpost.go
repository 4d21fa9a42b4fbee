// Package clickpost synthesizes left mouse clicks at the current pointer
// location.
package clickpost

import (
	"errors"
	"sync"
	"time"
)

var ErrNotTrusted = errors.New("accessibility permissions not granted - clicks cannot be posted")

// trustRecheck bounds how often an untrusted process asks the system again.
const trustRecheck = time.Second

// trustCache remembers the last accessibility check so the click loop does
// not query the system on every tick.
type trustCache struct {
	check func() bool
	now   func() time.Time

	mu        sync.Mutex
	trusted   bool
	checkedAt time.Time
}

func (t *trustCache) ok() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trusted {
		return true
	}
	now := t.now()
	if !t.checkedAt.IsZero() && now.Sub(t.checkedAt) < trustRecheck {
		return false
	}
	t.checkedAt = now
	t.trusted = t.check()
	return t.trusted
}
