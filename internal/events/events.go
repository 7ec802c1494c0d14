package events

import (
	"context"
	"time"
)

// RoutingKeyReviewGraded is the topic review events are published under.
const RoutingKeyReviewGraded = "srs.review.graded"

// ReviewEvent is emitted after a grading transaction commits.
type ReviewEvent struct {
	LearnerID        int64     `json:"learner_id"`
	DeckID           int64     `json:"deck_id"`
	ItemID           int64     `json:"item_id"`
	Rating           int       `json:"rating"`
	Recalled         bool      `json:"recalled"`
	IntervalBefore   int       `json:"interval_before"`
	IntervalAfter    int       `json:"interval_after"`
	HalfLifeDays     float64   `json:"half_life_days"`
	PredictedMastery float64   `json:"predicted_mastery"`
	ReviewedAt       time.Time `json:"reviewed_at"`
}

// Publisher delivers review events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event ReviewEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReviewEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }
