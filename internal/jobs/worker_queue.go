package jobs

import (
	"github.com/vytor/memora/internal/events"
	"github.com/vytor/memora/internal/worker"
)

// WorkerQueue implements EventQueue using a worker pool
type WorkerQueue struct {
	pool      *worker.Pool
	publisher events.Publisher
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, publisher events.Publisher) EventQueue {
	return &WorkerQueue{pool: pool, publisher: publisher}
}

func (q *WorkerQueue) EnqueueReview(event events.ReviewEvent) error {
	return q.pool.Submit(&worker.PublishReviewJob{
		Publisher: q.publisher,
		Event:     event,
	})
}
