package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/services"
)

// MockItemService is a mock implementation of services.ItemService
type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Sync(ctx context.Context, learnerID, deckID int64, entries []models.ItemEntry, now time.Time) (*services.SyncResult, error) {
	args := m.Called(ctx, learnerID, deckID, entries, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}

func (m *MockItemService) SetSuspended(ctx context.Context, learnerID, itemID int64, suspended bool, now time.Time) (*models.Item, error) {
	args := m.Called(ctx, learnerID, itemID, suspended, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

// MockDeckService is a mock implementation of services.DeckService
type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) ListDecks(ctx context.Context, learnerID int64) ([]models.Deck, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deck), args.Error(1)
}

func (m *MockDeckService) CreateDeck(ctx context.Context, learnerID int64, name string, now time.Time) (*models.Deck, error) {
	args := m.Called(ctx, learnerID, name, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}
