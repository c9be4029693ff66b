package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pagecrafter/internal/port"
)

// MockRateLimiter is a mock implementation of port.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (port.RateDecision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(port.RateDecision), args.Error(1)
}
