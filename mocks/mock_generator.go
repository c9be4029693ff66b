package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pagecrafter/internal/port"
)

// MockGenerator is a mock implementation of port.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Stream(ctx context.Context, input port.GenerateInput) (port.FragmentStream, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.FragmentStream), args.Error(1)
}

func (m *MockGenerator) Model() string {
	args := m.Called()
	return args.String(0)
}
