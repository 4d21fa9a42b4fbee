package clicker

import (
	"sync/atomic"
	"time"
)

// clickLoop fires one click per tick unless the stationary gate is closed.
type clickLoop struct {
	clock         Clock
	emitter       Emitter
	motion        *MotionRecord
	feed          *StateFeed
	logger        Logger
	interval      time.Duration
	stationaryFor time.Duration

	cancel CancelFunc

	clicks   atomic.Int64
	skipped  atomic.Int64
	failing  atomic.Bool
	reported atomic.Bool
}

func newClickLoop(cfg Config, clock Clock, emitter Emitter, motion *MotionRecord, feed *StateFeed, logger Logger) *clickLoop {
	return &clickLoop{
		clock:         clock,
		emitter:       emitter,
		motion:        motion,
		feed:          feed,
		logger:        logger,
		interval:      cfg.Interval(),
		stationaryFor: cfg.StationaryFor,
	}
}

func (l *clickLoop) arm() {
	if l.cancel != nil {
		return
	}
	l.cancel = l.clock.Every(l.interval, l.tick)
}

// disarm cancels the timer. No tick begins after it returns.
func (l *clickLoop) disarm() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	l.cancel = nil
}

func (l *clickLoop) armed() bool {
	return l.cancel != nil
}

func (l *clickLoop) tick() {
	if l.motion.Within(l.clock.Now(), l.stationaryFor) {
		l.skipped.Add(1)
		return
	}

	if err := l.emitter.Click(); err != nil {
		// Published at the start of every failure streak, logged once per
		// session; later ticks keep retrying quietly.
		if !l.failing.Swap(true) {
			l.feed.setEmitError(err)
			if l.reported.CompareAndSwap(false, true) {
				l.logger.Warn("failed to post click event", "error", err)
			}
		}
		return
	}
	if l.failing.Swap(false) {
		l.logger.Info("click posting recovered")
		l.feed.setEmitError(nil)
	}
	l.clicks.Add(1)
}

func (l *clickLoop) counts() (clicks, skipped int64) {
	return l.clicks.Load(), l.skipped.Load()
}
