package clicker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClockEveryStopsOnCancel(t *testing.T) {
	var ticks atomic.Int64
	cancel := SystemClock{}.Every(5*time.Millisecond, func() { ticks.Add(1) })

	time.Sleep(40 * time.Millisecond)
	cancel()
	seen := ticks.Load()
	require.GreaterOrEqual(t, seen, int64(1))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seen, ticks.Load(), "tick ran after cancel returned")

	cancel()
}

func TestSystemClockAfterCancel(t *testing.T) {
	var fired atomic.Bool
	cancel := SystemClock{}.After(20*time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestControllerWithSystemClock(t *testing.T) {
	emitter := &countingEmitter{}
	ctrl := NewController(nil, nil, emitter, nil)
	states, unsubscribe := ctrl.Feed().Subscribe()
	defer unsubscribe()

	require.NoError(t, ctrl.Start(Config{Rate: 100, StopAfter: 200 * time.Millisecond}))

	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case s := <-states:
			done = s == Idle && ctrl.State() == Idle && emitter.n.Load() > 0
		case <-deadline:
			t.Fatal("session did not stop on its own")
		}
	}

	clicks := emitter.n.Load()
	assert.GreaterOrEqual(t, clicks, int64(10))
	assert.LessOrEqual(t, clicks, int64(30))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, clicks, emitter.n.Load(), "click emitted after auto-stop")
}
