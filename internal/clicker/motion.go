package clicker

import (
	"sync/atomic"
	"time"
)

// MotionRecord holds the time of the last observed pointer movement.
// Only the motion watch writes it; the click loop reads it every tick.
type MotionRecord struct {
	last atomic.Int64 // unix nanos, 0 = never moved
}

func (m *MotionRecord) Store(at time.Time) {
	m.last.Store(at.UnixNano())
}

func (m *MotionRecord) Reset() {
	m.last.Store(0)
}

// LastMovedAt returns the zero time if no movement was recorded.
func (m *MotionRecord) LastMovedAt() time.Time {
	n := m.last.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Within reports whether now falls inside the stationary window that
// follows the last movement.
func (m *MotionRecord) Within(now time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	n := m.last.Load()
	if n == 0 {
		return false
	}
	return now.Sub(time.Unix(0, n)) < window
}

// motionWatch owns the pointer watch registration for one session.
type motionWatch struct {
	watch  PointerWatch
	record *MotionRecord
	logger Logger
	cancel CancelFunc
}

// arm registers the observer. A failed registration leaves the gate
// inactive for the session.
func (w *motionWatch) arm() {
	if w.cancel != nil {
		return
	}
	if w.watch == nil {
		w.logger.Warn("no pointer watch configured, stationary gate disabled")
		return
	}
	cancel, err := w.watch.OnMove(w.record.Store)
	if err != nil {
		w.logger.Warn("pointer watch unavailable, stationary gate disabled", "error", err)
		return
	}
	w.cancel = cancel
}

func (w *motionWatch) disarm() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
}

func (w *motionWatch) armed() bool {
	return w.cancel != nil
}
