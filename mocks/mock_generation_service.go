package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pagecrafter/internal/service"
)

// MockGenerationService is a mock implementation of service.GenerationService.
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) GenerateCode(ctx context.Context, req service.CodeRequest) (*service.CodeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CodeResult), args.Error(1)
}

func (m *MockGenerationService) GenerateDocument(ctx context.Context, req service.DocumentRequest) (*service.DocumentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentResult), args.Error(1)
}
