package clicker

import (
	"math"
	"sync"
	"time"
)

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionObserver registers fn to receive a summary of every finished
// session. fn runs outside the controller lock.
func WithSessionObserver(fn func(SessionSummary)) Option {
	return func(c *Controller) { c.onSession = fn }
}

// WithToggleHook registers fn to run after each Toggle with the resulting
// clicking flag.
func WithToggleHook(fn func(clicking bool)) Option {
	return func(c *Controller) { c.onToggle = fn }
}

// Controller arms and disarms the click loop and the pointer watch according
// to the start delay, the optional stop delay and explicit toggles.
type Controller struct {
	clock     Clock
	watch     PointerWatch
	emitter   Emitter
	source    ConfigSource
	feed      *StateFeed
	logger    Logger
	onSession func(SessionSummary)
	onToggle  func(bool)

	mu           sync.Mutex
	state        State
	gen          uint64 // bumped on every start and stop; stale deferred work checks it
	cfg          Config
	requestedAt  time.Time
	startedAt    time.Time
	motion       MotionRecord
	watcher      *motionWatch
	loop         *clickLoop
	lastLoop     *clickLoop
	pendingStart CancelFunc
	pendingStop  CancelFunc
}

// NewController builds an idle controller. A nil feed gets a fresh one.
func NewController(source ConfigSource, watch PointerWatch, emitter Emitter, feed *StateFeed, opts ...Option) *Controller {
	if feed == nil {
		feed = NewStateFeed()
	}
	c := &Controller{
		clock:   SystemClock{},
		watch:   watch,
		emitter: emitter,
		source:  source,
		feed:    feed,
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.watcher = &motionWatch{watch: c.watch, record: &c.motion, logger: c.logger}
	return c
}

func (c *Controller) Feed() *StateFeed { return c.feed }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns the configuration of the current or most recent session.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Progress returns the clicks emitted and ticks skipped by the current or
// most recent session.
func (c *Controller) Progress() (clicks, skipped int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loop != nil {
		return c.loop.counts()
	}
	if c.lastLoop != nil {
		return c.lastLoop.counts()
	}
	return 0, 0
}

// Toggle starts a session with the configuration from the source when idle
// and stops the pending or active session otherwise. It returns whether a
// session is pending or active afterwards.
func (c *Controller) Toggle() bool {
	for {
		idle := c.State() == Idle
		var cfg Config
		if idle {
			cfg = c.loadConfig()
		}

		c.mu.Lock()
		if (c.state == Idle) != idle {
			// Another toggle won the race while the config was loading.
			c.mu.Unlock()
			continue
		}
		var (
			summary SessionSummary
			stopped bool
		)
		if idle {
			c.startLocked(cfg)
		} else {
			summary, stopped = c.stopLocked(StopManual)
		}
		clicking := c.state == PendingStart || c.state == Active
		c.mu.Unlock()

		if stopped {
			c.notifySession(summary)
		}
		if c.onToggle != nil {
			c.onToggle(clicking)
		}
		return clicking
	}
}

func (c *Controller) loadConfig() Config {
	if c.source == nil {
		return DefaultConfig()
	}
	cfg, err := c.source.ClickConfig()
	if err != nil {
		c.logger.Warn("failed to load click preferences, using defaults", "error", err)
		return DefaultConfig()
	}
	return cfg
}

// Start requests a session. It returns ErrSessionActive unless idle.
func (c *Controller) Start(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return ErrSessionActive
	}
	c.startLocked(cfg)
	return nil
}

func (c *Controller) startLocked(cfg Config) {
	cfg = cfg.Sanitized()
	c.gen++
	gen := c.gen

	c.cfg = cfg
	c.requestedAt = c.clock.Now()
	c.startedAt = time.Time{}
	c.lastLoop = nil
	c.motion.Reset()
	c.setStateLocked(PendingStart)

	c.watcher.arm()
	c.pendingStart = c.clock.After(cfg.StartDelay, func() { c.activate(gen) })
	if cfg.StopAfter > 0 {
		stopAt := cfg.StartDelay + cfg.StopAfter
		if stopAt < cfg.StartDelay {
			stopAt = math.MaxInt64
		}
		c.pendingStop = c.clock.After(stopAt, func() { c.autoStop(gen) })
	}

	c.logger.Info("click session requested",
		"rate", cfg.Rate,
		"start_delay", cfg.StartDelay,
		"stop_after", cfg.StopAfter,
		"stationary_for", cfg.StationaryFor,
	)
}

func (c *Controller) activate(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != PendingStart {
		return
	}
	c.pendingStart = nil
	c.startedAt = c.clock.Now()
	c.loop = newClickLoop(c.cfg, c.clock, c.emitter, &c.motion, c.feed, c.logger)
	c.loop.arm()
	c.setStateLocked(Active)
	c.logger.Info("click session active", "interval", c.loop.interval)
}

// autoStop is a no-op if the session it was scheduled for already ended.
func (c *Controller) autoStop(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	summary, stopped := c.stopLocked(StopAuto)
	c.mu.Unlock()

	if stopped {
		c.notifySession(summary)
	}
}

// Stop ends the pending or active session. On return the click timer is
// canceled and the pointer watch removed. Stopping an idle controller is a
// no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	summary, stopped := c.stopLocked(StopManual)
	c.mu.Unlock()

	if stopped {
		c.notifySession(summary)
	}
}

func (c *Controller) stopLocked(reason StopReason) (SessionSummary, bool) {
	if c.state == Idle || c.state == Stopping {
		return SessionSummary{}, false
	}
	if c.state == PendingStart && reason == StopManual {
		reason = StopCanceled
	}
	c.setStateLocked(Stopping)
	c.gen++

	if c.pendingStart != nil {
		c.pendingStart()
		c.pendingStart = nil
	}
	if c.pendingStop != nil {
		c.pendingStop()
		c.pendingStop = nil
	}

	var clicks, skipped int64
	if c.loop != nil {
		c.loop.disarm()
		clicks, skipped = c.loop.counts()
		c.lastLoop = c.loop
		c.loop = nil
	}
	c.watcher.disarm()

	summary := SessionSummary{
		RequestedAt: c.requestedAt,
		StartedAt:   c.startedAt,
		EndedAt:     c.clock.Now(),
		Config:      c.cfg,
		Clicks:      clicks,
		Skipped:     skipped,
		Reason:      reason,
	}
	c.setStateLocked(Idle)

	c.logger.Info("click session stopped",
		"reason", string(reason),
		"clicks", clicks,
		"skipped", skipped,
		"active_for", summary.ActiveFor(),
	)
	return summary, true
}

func (c *Controller) setStateLocked(s State) {
	c.state = s
	c.feed.publish(s)
}

func (c *Controller) notifySession(summary SessionSummary) {
	if c.onSession != nil {
		c.onSession(summary)
	}
}
