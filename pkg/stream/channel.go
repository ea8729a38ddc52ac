package stream

import (
	"context"
	"sync"
)

// EventChannel is an unbounded single-producer/single-consumer FIFO bridging
// a push-style producer (the network callback loop) to a pull-style consumer.
// At most one consumer waits at a time; Push wakes it if it is parked.
//
// Backpressure is bounded by construction: the producer never runs more than
// one read-and-parse step ahead of the queue, and the consumer drains the
// whole queue before parking again, so memory is proportional to events
// produced since the last consumer wake-up, not to total stream length.
type EventChannel[T any] struct {
	mu     sync.Mutex
	queue  []T
	waiter chan struct{}
	closed bool
}

// NewEventChannel creates an empty, open channel.
func NewEventChannel[T any]() *EventChannel[T] {
	return &EventChannel[T]{}
}

// Push appends v to the queue and wakes the waiting consumer, if any.
// Pushes after Close are discarded.
func (c *EventChannel[T]) Push(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.queue = append(c.queue, v)
	if c.waiter != nil {
		close(c.waiter)
		c.waiter = nil
	}
}

// Pull blocks until at least one event is queued, then drains and returns
// everything queued, in arrival order. It returns ok=false once the channel
// is closed and fully drained, or when ctx is done.
func (c *EventChannel[T]) Pull(ctx context.Context) ([]T, bool) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			batch := c.queue
			c.queue = nil
			c.mu.Unlock()
			return batch, true
		}
		if c.closed {
			c.mu.Unlock()
			return nil, false
		}
		if c.waiter == nil {
			c.waiter = make(chan struct{})
		}
		waiter := c.waiter
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-waiter:
		}
	}
}

// Close marks the channel closed and wakes a parked consumer. Events queued
// before Close remain pullable; later pushes are discarded. Close is
// idempotent and safe to call from either side of the bridge.
func (c *EventChannel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.waiter != nil {
		close(c.waiter)
		c.waiter = nil
	}
}
