package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/memora/internal/errors"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/repository"
)

const maxDeckNameLength = 100

// DeckService handles deck-related business logic
type DeckService interface {
	ListDecks(ctx context.Context, learnerID int64) ([]models.Deck, error)
	CreateDeck(ctx context.Context, learnerID int64, name string, now time.Time) (*models.Deck, error)
}

type deckService struct {
	store repository.Store
}

// NewDeckService creates a new DeckService
func NewDeckService(store repository.Store) DeckService {
	return &deckService{store: store}
}

// resolveDeck returns deckID when it belongs to the learner, or the
// learner's default deck, created on demand, when deckID is zero.
func resolveDeck(ctx context.Context, repos repository.Repositories, learnerID, deckID int64, defaultName string, now time.Time) (int64, error) {
	if deckID == 0 {
		deck, err := repos.Decks.GetOrCreate(ctx, learnerID, defaultName, now)
		if err != nil {
			return 0, err
		}
		return deck.ID, nil
	}
	deck, err := repos.Decks.Get(ctx, learnerID, deckID)
	if err != nil {
		return 0, err
	}
	if deck == nil {
		return 0, errors.NewNotFoundError("deck", deckID)
	}
	return deck.ID, nil
}

func (s *deckService) ListDecks(ctx context.Context, learnerID int64) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")
	log.Debug("listing decks: learner_id=%d", learnerID)

	decks, err := s.store.Repositories().Decks.List(ctx, learnerID)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, storeError(err)
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	return decks, nil
}

func (s *deckService) CreateDeck(ctx context.Context, learnerID int64, name string, now time.Time) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}
	if len([]rune(name)) > maxDeckNameLength {
		return nil, errors.NewValidationError("name", "must be at most 100 characters")
	}
	log.Debug("creating deck: learner_id=%d, name=%s", learnerID, name)

	var deck *models.Deck
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		deck, err = repos.Decks.GetOrCreate(ctx, learnerID, name, now)
		return err
	})
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, storeError(err)
	}
	return deck, nil
}
