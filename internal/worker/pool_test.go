package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/events"
	"github.com/vytor/memora/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsAndDrainsOnStop(t *testing.T) {
	p := worker.NewPool(2, 16)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(10), ran.Load())
	assert.ErrorIs(t, p.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }}), worker.ErrPoolStopped)
	assert.NotPanics(t, p.Stop)
}

func TestPool_SubmitFailsWhenFull(t *testing.T) {
	p := worker.NewPool(1, 1)

	// not started, so nothing drains the queue
	require.NoError(t, p.Submit(funcJob{name: "a", fn: func(context.Context) error { return nil }}))
	err := p.Submit(funcJob{name: "b", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())
}

func TestPool_FailedJobDoesNotStopWorker(t *testing.T) {
	p := worker.NewPool(1, 4)
	p.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "ok", fn: func(context.Context) error {
		wg.Done()
		return nil
	}}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second job never ran")
	}
	p.Stop()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReviewEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.ReviewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestPublishReviewJob(t *testing.T) {
	pub := &recordingPublisher{}
	job := &worker.PublishReviewJob{Publisher: pub, Event: events.ReviewEvent{ItemID: 9, Rating: 4}}

	assert.Equal(t, "publish_review", job.Name())
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(9), pub.events[0].ItemID)

	pub.err = errors.New("broker down")
	assert.EqualError(t, job.Run(context.Background()), "broker down")
}
