package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/memora/internal/models"
)

// MockSchedulerService is a mock implementation of services.SchedulerService
type MockSchedulerService struct {
	mock.Mock
}

func (m *MockSchedulerService) Grade(ctx context.Context, learnerID, itemID int64, rating int, now time.Time) (*models.GradeResult, error) {
	args := m.Called(ctx, learnerID, itemID, rating, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GradeResult), args.Error(1)
}

func (m *MockSchedulerService) Next(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.NextResult, error) {
	args := m.Called(ctx, learnerID, deckID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NextResult), args.Error(1)
}

func (m *MockSchedulerService) SetMode(ctx context.Context, learnerID, deckID int64, mode string, now time.Time) (*models.ScheduleSummary, error) {
	args := m.Called(ctx, learnerID, deckID, mode, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleSummary), args.Error(1)
}

func (m *MockSchedulerService) SetLimit(ctx context.Context, learnerID, deckID int64, limit int, now time.Time) (*models.ScheduleSummary, error) {
	args := m.Called(ctx, learnerID, deckID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleSummary), args.Error(1)
}

func (m *MockSchedulerService) State(ctx context.Context, learnerID, deckID int64, now time.Time) (*models.ScheduleSummary, error) {
	args := m.Called(ctx, learnerID, deckID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleSummary), args.Error(1)
}

func (m *MockSchedulerService) ReviewHistory(ctx context.Context, learnerID, itemID int64, limit int) ([]models.ReviewLogEntry, error) {
	args := m.Called(ctx, learnerID, itemID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLogEntry), args.Error(1)
}
