package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/port"
)

// MockProjectRepo is a mock implementation of port.ProjectRepository.
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Project), args.Int(1), args.Error(2)
}

func (m *MockProjectRepo) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	args := m.Called(ctx, userID, projectID)
	return args.Error(0)
}

func (m *MockProjectRepo) AppendExchange(ctx context.Context, userID, projectID uuid.UUID, update port.ExchangeUpdate) (*domain.Project, error) {
	args := m.Called(ctx, userID, projectID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
