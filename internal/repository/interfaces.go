package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/memora/internal/models"
)

// ErrContention is wrapped around store errors caused by concurrent
// writers. Callers may retry the whole operation.
var ErrContention = errors.New("store contention")

// ItemRepository handles item data access. Lookups return nil, nil when the
// item does not exist for the learner.
type ItemRepository interface {
	Get(ctx context.Context, learnerID, id int64) (*models.Item, error)
	InsertIfAbsent(ctx context.Context, item models.Item) (bool, error)
	UpdateSchedule(ctx context.Context, item models.Item) error
	SetSuspended(ctx context.Context, learnerID, id int64, suspended bool, now time.Time) (bool, error)
	NextDueReview(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.Item, error)
	NextNewItem(ctx context.Context, learnerID, deckID int64) (*models.Item, error)
	CountDueReviews(ctx context.Context, learnerID, deckID int64, now time.Time) (int, error)
	CountNew(ctx context.Context, learnerID, deckID int64) (int, error)
}

// LearnerStateRepository handles per learner-deck scheduling state.
type LearnerStateRepository interface {
	Get(ctx context.Context, learnerID, deckID int64) (*models.LearnerDeckState, error)
	Upsert(ctx context.Context, state models.LearnerDeckState) error
}

// ReviewLogRepository is append-only.
type ReviewLogRepository interface {
	Append(ctx context.Context, entry models.ReviewLogEntry) (int64, error)
	ListByItem(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewLogEntry, error)
}

// DeckRepository handles deck data access.
type DeckRepository interface {
	Get(ctx context.Context, learnerID, id int64) (*models.Deck, error)
	GetOrCreate(ctx context.Context, learnerID int64, name string, now time.Time) (*models.Deck, error)
	List(ctx context.Context, learnerID int64) ([]models.Deck, error)
}

// Repositories groups repositories sharing one connection or transaction.
type Repositories struct {
	Items   ItemRepository
	States  LearnerStateRepository
	Reviews ReviewLogRepository
	Decks   DeckRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repositories() Repositories
	// WithinTx runs fn inside a transaction that holds the write lock for
	// its whole duration. fn must only use the repositories it is given.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
