package queue

import (
	"context"
	"sync"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// MemoryQueue is an in-process queue backed by a buffered channel. Jobs are
// lost on restart; their events stay pending in the store for replay.
type MemoryQueue struct {
	jobs      chan entity.WebhookJob
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{
		jobs: make(chan entity.WebhookJob, size),
		done: make(chan struct{}),
	}
}

// Enqueue never blocks; it returns ErrQueueFull when the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, job entity.WebhookJob) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return nil
		case job := <-q.jobs:
			// Handler errors are recorded on the event row by the handler.
			_ = handler(ctx, job)
		}
	}
}

// Len reports the number of buffered jobs.
func (q *MemoryQueue) Len(ctx context.Context) (int, error) {
	return len(q.jobs), nil
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
