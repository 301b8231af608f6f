// Package loop is a single-threaded cooperative task loop. Every mutation of
// the GATT tree runs on it; other goroutines hand work over with Post or Call,
// and timers fire by posting to it.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned when work is handed to a loop that has quit.
var ErrStopped = errors.New("loop stopped")

// Loop runs posted tasks one at a time on the goroutine that called Run.
type Loop struct {
	logger *logrus.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool

	timers *hashmap.Map[uint64, *Timer]
	nextID atomic.Uint64

	done     chan struct{}
	quitOnce sync.Once
	err      error
}

// New creates a loop. A nil logger falls back to logrus' standard logger.
func New(logger *logrus.Logger) *Loop {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		timers: hashmap.New[uint64, *Timer](),
		done:   make(chan struct{}),
	}
}

// Post queues fn to run on the loop. It never blocks and reports false if
// the loop has already quit.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (l *Loop) Call(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// the task may still have run if it was dequeued before the quit
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Run processes tasks until Quit is called or ctx is cancelled, and returns
// the error passed to Quit (or ctx.Err()).
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("Main loop started")
	defer l.logger.Debug("Main loop finished")

	for {
		for _, fn := range l.take() {
			l.run(fn)
			if l.quitting() {
				break
			}
		}
		if l.quitting() {
			return l.err
		}

		select {
		case <-ctx.Done():
			l.Quit(ctx.Err())
			return l.err
		case <-l.done:
			return l.err
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithField("panic", r).Error("Loop task panicked")
		}
	}()
	fn()
}

func (l *Loop) quitting() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Quit stops the loop, cancels all timers and drops queued tasks.
// Only the first call's err is recorded.
func (l *Loop) Quit(err error) {
	l.quitOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		dropped := len(l.queue)
		l.queue = nil
		l.err = err
		l.mu.Unlock()

		timers := l.activeTimers()
		l.timers.Range(func(_ uint64, t *Timer) bool {
			t.Stop()
			return true
		})

		fields := logrus.Fields{"dropped_tasks": dropped, "stopped_timers": timers}
		if err != nil {
			fields["error"] = err
		}
		l.logger.WithFields(fields).Debug("Main loop quit")
		close(l.done)
	})
}

// Done is closed once Quit has been called.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) activeTimers() int { return l.timers.Len() }

// AfterFunc runs fn on the loop once after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	t := l.newTimer()
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fire() {
				l.timers.Del(t.id)
				fn()
			}
		})
	})
	return l.register(t)
}

// Every runs fn on the loop every d until the returned timer is stopped.
// Ticks that arrive while the previous one is still queued are coalesced.
func (l *Loop) Every(d time.Duration, fn func()) *Timer {
	t := l.newTimer()
	ticker := time.NewTicker(d)
	var pending atomic.Bool
	Go(context.Background(), "loop-ticker", func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if !pending.CompareAndSwap(false, true) {
					continue
				}
				l.Post(func() {
					pending.Store(false)
					if t.Active() {
						fn()
					}
				})
			}
		}
	})
	return l.register(t)
}

func (l *Loop) newTimer() *Timer {
	return &Timer{
		id:    l.nextID.Add(1),
		stop:  make(chan struct{}),
		owner: l,
	}
}

// register tracks t so Quit can cancel it; a timer created after Quit is
// returned already stopped.
func (l *Loop) register(t *Timer) *Timer {
	l.mu.Lock()
	stopped := l.stopped
	if !stopped {
		l.timers.Set(t.id, t)
	}
	l.mu.Unlock()
	if stopped {
		t.Stop()
	}
	return t
}
