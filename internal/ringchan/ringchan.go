// Package ringchan provides a bounded channel that never blocks producers:
// when the buffer is full the oldest element is discarded.
//
// It is used to observe notifications without letting a slow observer
// stall the main loop.
//
//	rc := ringchan.New[[]byte](16)
//	rc.Send(report)          // never blocks
//	for v := range rc.C() {  // normal channel on the consumer side
//	    ...
//	}
package ringchan

import (
	"sync"
	"sync/atomic"
)

// RingChannel is a bounded channel with overwrite-oldest semantics.
type RingChannel[T any] struct {
	mu     sync.Mutex // serialises producers so drop-then-send is atomic
	ch     chan T
	closed bool
	stats  Stats
}

// New creates a RingChannel with the given capacity.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the receive side.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Send inserts v, discarding the oldest element if the buffer is full.
// It reports whether an element was dropped. Send after Close is ignored.
func (rc *RingChannel[T]) Send(v T) (dropped bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.closed {
		return false
	}

	for {
		select {
		case rc.ch <- v:
			atomic.AddInt64(&rc.stats.Sent, 1)
			return dropped
		default:
		}
		// full: a consumer may have drained it meanwhile, so don't block here
		select {
		case <-rc.ch:
			atomic.AddInt64(&rc.stats.Dropped, 1)
			dropped = true
		default:
		}
	}
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int { return len(rc.ch) }

// Close closes the receive side. It is safe to call more than once.
func (rc *RingChannel[T]) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.closed {
		rc.closed = true
		close(rc.ch)
	}
}

// Stats returns a snapshot of the counters.
func (rc *RingChannel[T]) Stats() Stats {
	return Stats{
		Sent:    atomic.LoadInt64(&rc.stats.Sent),
		Dropped: atomic.LoadInt64(&rc.stats.Dropped),
	}
}

// Stats counts channel traffic.
type Stats struct {
	Sent    int64
	Dropped int64
}
