package clicker

import "sync"

// StateFeed publishes controller state to observers such as the menu bar or
// the terminal dashboard. Only the controller writes to it.
type StateFeed struct {
	mu      sync.RWMutex
	state   State
	emitErr error
	subs    map[int]chan State
	nextID  int
}

func NewStateFeed() *StateFeed {
	return &StateFeed{subs: make(map[int]chan State)}
}

func (f *StateFeed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// IsClicking reports whether a session is pending or active, i.e. whether a
// toggle would stop it.
func (f *StateFeed) IsClicking() bool {
	s := f.State()
	return s == PendingStart || s == Active
}

// EmitError returns the last click posting failure of the current session,
// or nil once posting recovers.
func (f *StateFeed) EmitError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.emitErr
}

// Subscribe returns a channel carrying the latest state. Slow readers only
// see the most recent value.
func (f *StateFeed) Subscribe() (<-chan State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan State, 1)
	ch <- f.state
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
}

func (f *StateFeed) publish(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = s
	if s == PendingStart {
		f.emitErr = nil
	}
	for _, ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (f *StateFeed) setEmitError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitErr = err
}
