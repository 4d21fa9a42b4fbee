package clicker

import (
	"sync"
	"sync/atomic"
	"time"
)

var epoch = time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

type fakeEvent struct {
	due      time.Time
	seq      int
	interval time.Duration
	fn       func()
	canceled bool
}

// fakeClock runs scheduled callbacks synchronously from Advance in due order;
// callbacks due at the same instant run in scheduling order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	events []*fakeEvent
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration, fn func()) CancelFunc {
	return c.schedule(d, 0, fn)
}

func (c *fakeClock) Every(interval time.Duration, fn func()) CancelFunc {
	return c.schedule(0, interval, fn)
}

func (c *fakeClock) schedule(d, interval time.Duration, fn func()) CancelFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	ev := &fakeEvent{due: c.now.Add(d), seq: c.seq, interval: interval, fn: fn}
	c.events = append(c.events, ev)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		ev.canceled = true
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		ev := c.nextDueLocked(target)
		if ev == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = ev.due
		if ev.interval > 0 {
			c.seq++
			ev.due = ev.due.Add(ev.interval)
			ev.seq = c.seq
		} else {
			ev.canceled = true
		}
		fn := ev.fn
		c.mu.Unlock()

		fn()
	}
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeEvent {
	live := c.events[:0]
	var next *fakeEvent
	for _, ev := range c.events {
		if ev.canceled {
			continue
		}
		live = append(live, ev)
		if ev.due.After(target) {
			continue
		}
		if next == nil || ev.due.Before(next.due) || (ev.due.Equal(next.due) && ev.seq < next.seq) {
			next = ev
		}
	}
	c.events = live
	return next
}

// periodic returns the number of live repeating timers.
func (c *fakeClock) periodic() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if !ev.canceled && ev.interval > 0 {
			n++
		}
	}
	return n
}

type fakeWatch struct {
	mu            sync.Mutex
	fn            func(time.Time)
	err           error
	registrations int
}

func (w *fakeWatch) OnMove(fn func(time.Time)) (CancelFunc, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	w.fn = fn
	w.registrations++
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.fn = nil
	}, nil
}

func (w *fakeWatch) move(at time.Time) {
	w.mu.Lock()
	fn := w.fn
	w.mu.Unlock()
	if fn != nil {
		fn(at)
	}
}

func (w *fakeWatch) registered() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fn != nil
}

type fakeEmitter struct {
	clock Clock

	mu    sync.Mutex
	err   error
	times []time.Time
}

func (e *fakeEmitter) Click() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.times = append(e.times, e.clock.Now())
	return nil
}

func (e *fakeEmitter) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

func (e *fakeEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.times)
}

func (e *fakeEmitter) clickTimes() []time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]time.Time, len(e.times))
	copy(out, e.times)
	return out
}

type countingEmitter struct {
	n atomic.Int64
}

func (e *countingEmitter) Click() error {
	e.n.Add(1)
	return nil
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

type harness struct {
	clock    *fakeClock
	watch    *fakeWatch
	emitter  *fakeEmitter
	logger   *recordingLogger
	ctrl     *Controller
	mu       sync.Mutex
	sessions []SessionSummary
	toggles  []bool
}

func newHarness(cfg Config) *harness {
	h := &harness{
		clock:  newFakeClock(),
		watch:  &fakeWatch{},
		logger: &recordingLogger{},
	}
	h.emitter = &fakeEmitter{clock: h.clock}
	source := ConfigFunc(func() (Config, error) { return cfg, nil })
	h.ctrl = NewController(source, h.watch, h.emitter, nil,
		WithClock(h.clock),
		WithLogger(h.logger),
		WithSessionObserver(func(s SessionSummary) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.sessions = append(h.sessions, s)
		}),
		WithToggleHook(func(clicking bool) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.toggles = append(h.toggles, clicking)
		}),
	)
	return h
}

func (h *harness) summaries() []SessionSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SessionSummary, len(h.sessions))
	copy(out, h.sessions)
	return out
}
