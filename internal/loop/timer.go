package loop

import (
	"sync/atomic"
	"time"
)

const (
	timerArmed int32 = iota
	timerFired
	timerStopped
)

// Timer is a handle to an armed AfterFunc or Every callback.
type Timer struct {
	id    uint64
	state atomic.Int32
	timer *time.Timer
	stop  chan struct{}
	owner *Loop
}

// Stop disarms the timer. It reports whether the timer was still armed;
// stopping a fired or already stopped timer is a no-op.
func (t *Timer) Stop() bool {
	if !t.state.CompareAndSwap(timerArmed, timerStopped) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	close(t.stop)
	t.owner.timers.Del(t.id)
	return true
}

// Active reports whether the timer is still armed.
func (t *Timer) Active() bool {
	return t.state.Load() == timerArmed
}

// fire moves a one-shot timer to the fired state.
func (t *Timer) fire() bool {
	return t.state.CompareAndSwap(timerArmed, timerFired)
}
