package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/memora/internal/events"
)

// MockEventQueue is a mock implementation of jobs.EventQueue
type MockEventQueue struct {
	mock.Mock
}

func (m *MockEventQueue) EnqueueReview(event events.ReviewEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
