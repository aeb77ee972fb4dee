// Package queue carries grab requests from the HTTP surface to the frame
// loop.
//
// Producers enqueue without blocking; the frame loop drains with TryDequeue
// so a frame never waits on input.
package queue

import (
	"context"
	"sync"

	"github.com/okian/contribgrid/internal/domain/types"
	"github.com/okian/contribgrid/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Request is the payload type flowing through the queue.
type Request = types.GrabRequest

// Queue provides non-blocking enqueue and non-blocking dequeue.
type Queue interface {
	// Enqueue adds a request to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, r Request) bool

	// TryDequeue returns the oldest queued request, or false when none is
	// waiting.
	TryDequeue() (Request, bool)

	// Len returns the current number of queued requests.
	Len() int

	// Close stops accepting requests. Queued requests can still be drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		q.reject("context_cancelled")
		return false
	}

	select {
	case q.requests <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.requests))
		return true
	default:
		q.reject("queue_full")
		return false
	}
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

// TryDequeue returns the oldest queued request without blocking.
func (q *InMemoryQueue) TryDequeue() (Request, bool) {
	select {
	case r, ok := <-q.requests:
		if !ok {
			return Request{}, false
		}
		metrics.RecordQueueDequeue()
		metrics.UpdateQueueSize(len(q.requests))
		return r, true
	default:
		return Request{}, false
	}
}

// Len returns the current number of queued requests.
func (q *InMemoryQueue) Len() int {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting requests.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
