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

// SyncResult reports what a sync did with each entry.
type SyncResult struct {
	DeckID   int64 `json:"deck_id"`
	Created  int   `json:"created"`
	Existing int   `json:"existing"`
	Skipped  int   `json:"skipped"`
}

// ItemService creates items from the glossary feed and toggles suspension.
type ItemService interface {
	Sync(ctx context.Context, learnerID, deckID int64, entries []models.ItemEntry, now time.Time) (*SyncResult, error)
	SetSuspended(ctx context.Context, learnerID, itemID int64, suspended bool, now time.Time) (*models.Item, error)
}

type itemService struct {
	store       repository.Store
	defaults    models.ItemDefaults
	defaultDeck string
}

// NewItemService creates a new ItemService
func NewItemService(store repository.Store, defaults models.ItemDefaults, defaultDeck string) ItemService {
	return &itemService{store: store, defaults: defaults, defaultDeck: defaultDeck}
}

// Sync inserts one item per (front, back) pair not already in the deck.
// Entries with a blank side after trimming are skipped. Running the same
// sync twice creates nothing the second time.
func (s *itemService) Sync(ctx context.Context, learnerID, deckID int64, entries []models.ItemEntry, now time.Time) (*SyncResult, error) {
	log := logger.FromContext(ctx).WithPrefix("item_service")
	log.Debug("syncing %d entries: learner_id=%d, deck_id=%d", len(entries), learnerID, deckID)

	var result SyncResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		id, err := resolveDeck(ctx, repos, learnerID, deckID, s.defaultDeck, now)
		if err != nil {
			return err
		}
		result.DeckID = id

		for i, e := range entries {
			front := strings.TrimSpace(e.Front)
			back := strings.TrimSpace(e.Back)
			if front == "" || back == "" {
				result.Skipped++
				continue
			}
			// distinct created_at keeps the FIFO order equal to feed order
			created := now.Add(time.Duration(i) * time.Microsecond)
			made, err := repos.Items.InsertIfAbsent(ctx, models.Item{
				LearnerID:    learnerID,
				DeckID:       id,
				FrontText:    front,
				BackText:     back,
				Notes:        strings.TrimSpace(e.Notes),
				DueAt:        now,
				EaseFactor:   s.defaults.EaseFactor,
				HalfLifeDays: s.defaults.HalfLifeDays,
				CreatedAt:    created,
				UpdatedAt:    created,
			})
			if err != nil {
				return err
			}
			if made {
				result.Created++
			} else {
				result.Existing++
			}
		}
		return nil
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			log.Error("failed to sync items: %v", err)
		}
		return nil, storeError(err)
	}

	log.Info("sync finished: deck_id=%d, created=%d, existing=%d, skipped=%d", result.DeckID, result.Created, result.Existing, result.Skipped)
	return &result, nil
}

func (s *itemService) SetSuspended(ctx context.Context, learnerID, itemID int64, suspended bool, now time.Time) (*models.Item, error) {
	log := logger.FromContext(ctx).WithPrefix("item_service")
	log.Debug("setting suspended: learner_id=%d, item_id=%d, suspended=%t", learnerID, itemID, suspended)

	var item *models.Item
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ok, err := repos.Items.SetSuspended(ctx, learnerID, itemID, suspended, now)
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewNotFoundError("item", itemID)
		}
		item, err = repos.Items.Get(ctx, learnerID, itemID)
		return err
	})
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeNotFound) {
			log.Error("failed to set suspended: %v", err)
		}
		return nil, storeError(err)
	}
	return item, nil
}
