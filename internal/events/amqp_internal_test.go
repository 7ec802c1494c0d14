package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu        sync.Mutex
	failures  int
	published []amqp091.Publishing
	keys      []string
	closed    bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return errors.New("channel closed")
	}
	c.keys = append(c.keys, exchange+"/"+key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func TestPublish_SendsJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(func() (channel, io.Closer, error) { return ch, nopCloser{}, nil }, "memora.srs", 3, time.Millisecond)

	at := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	err := p.Publish(context.Background(), ReviewEvent{LearnerID: 1, DeckID: 2, ItemID: 3, Rating: 5, Recalled: true, IntervalAfter: 4, ReviewedAt: at})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	assert.Equal(t, "memora.srs/"+RoutingKeyReviewGraded, ch.keys[0])
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)

	var got ReviewEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, int64(3), got.ItemID)
	assert.Equal(t, 4, got.IntervalAfter)
	assert.True(t, got.ReviewedAt.Equal(at))
}

func TestPublish_RedialsAfterFailure(t *testing.T) {
	first := &fakeChannel{failures: 1}
	second := &fakeChannel{}
	dials := 0
	p := newPublisher(func() (channel, io.Closer, error) {
		dials++
		if dials == 1 {
			return first, nopCloser{}, nil
		}
		return second, nopCloser{}, nil
	}, "x", 3, time.Millisecond)

	require.NoError(t, p.Publish(context.Background(), ReviewEvent{ItemID: 1}))
	assert.Equal(t, 2, dials)
	assert.True(t, first.closed)
	assert.Len(t, second.published, 1)
}

func TestPublish_GivesUpAfterAttempts(t *testing.T) {
	dials := 0
	p := newPublisher(func() (channel, io.Closer, error) {
		dials++
		return nil, nil, errors.New("connection refused")
	}, "x", 2, time.Millisecond)

	err := p.Publish(context.Background(), ReviewEvent{ItemID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 2, dials)
}

func TestClose_Idempotent(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(func() (channel, io.Closer, error) { return ch, nopCloser{}, nil }, "x", 1, time.Millisecond)
	require.NoError(t, p.Publish(context.Background(), ReviewEvent{}))

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), ReviewEvent{}))
	assert.NoError(t, p.Close())
}
