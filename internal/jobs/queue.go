package jobs

import "github.com/vytor/memora/internal/events"

// EventQueue provides an abstraction for handing review events to
// background delivery.
type EventQueue interface {
	EnqueueReview(event events.ReviewEvent) error
}
