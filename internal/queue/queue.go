// Package queue provides the bounded event queues connecting the request
// path to the background consumers.
package queue

import (
	"go.uber.org/zap"
)

// Queue is a bounded multi-producer queue with a single consumer loop.
// Producers never block: TryEnqueue drops the event and reports false when
// the buffer is full, which callers must treat as best-effort delivery.
type Queue[T any] struct {
	name string
	ch   chan T
	log  *zap.Logger
}

// New creates a queue with a fixed capacity. The capacity bounds memory
// growth under burst; a full queue is a back-pressure signal, not an error.
func New[T any](name string, capacity int, log *zap.Logger) *Queue[T] {
	return &Queue[T]{
		name: name,
		ch:   make(chan T, capacity),
		log:  log,
	}
}

// TryEnqueue offers an event to the queue without blocking. It returns
// false when the queue is at capacity; the caller's request must proceed
// regardless.
func (q *Queue[T]) TryEnqueue(ev T) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.log.Warn("queue is full, dropping event",
			zap.String("queue", q.name),
			zap.Int("capacity", cap(q.ch)),
		)
		return false
	}
}

// Receive exposes the consumer side of the queue. Exactly one consumer
// loop is expected to range over it.
func (q *Queue[T]) Receive() <-chan T {
	return q.ch
}

// Close closes the producer side. After Close the consumer drains the
// in-flight items and its loop exits.
func (q *Queue[T]) Close() {
	close(q.ch)
}

// Len returns the number of buffered events.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
