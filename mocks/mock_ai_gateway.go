package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"orthocode/internal/port"
)

// MockAIGateway is a mock implementation of port.AIGateway.
type MockAIGateway struct {
	mock.Mock
}

func (m *MockAIGateway) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompletionOutput), args.Error(1)
}

func (m *MockAIGateway) Provider() string {
	args := m.Called()
	return args.String(0)
}
