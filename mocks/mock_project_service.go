package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/service"
)

// MockProjectService is a mock implementation of service.ProjectService.
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, userID uuid.UUID, input service.CreateProjectInput) (*domain.Project, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectService) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Project), args.Int(1), args.Error(2)
}

func (m *MockProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	args := m.Called(ctx, userID, projectID)
	return args.Error(0)
}

func (m *MockProjectService) SendMessage(ctx context.Context, userID, projectID uuid.UUID, prompt string) (*domain.Turn, error) {
	args := m.Called(ctx, userID, projectID, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Turn), args.Error(1)
}

func (m *MockProjectService) Export(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportFile, error) {
	args := m.Called(ctx, userID, projectID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportFile), args.Error(1)
}

func (m *MockProjectService) PublishExport(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportLink, error) {
	args := m.Called(ctx, userID, projectID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportLink), args.Error(1)
}
