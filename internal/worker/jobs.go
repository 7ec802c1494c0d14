package worker

import (
	"context"

	"github.com/vytor/memora/internal/events"
	"github.com/vytor/memora/internal/logger"
)

// PublishReviewJob hands one review event to the publisher.
type PublishReviewJob struct {
	Publisher events.Publisher
	Event     events.ReviewEvent
}

func (j *PublishReviewJob) Name() string { return "publish_review" }

func (j *PublishReviewJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"learner_id": j.Event.LearnerID,
		"item_id":    j.Event.ItemID,
	})
	if err := j.Publisher.Publish(ctx, j.Event); err != nil {
		return err
	}
	log.Debug("review event published")
	return nil
}
