package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"orthocode/internal/domain"
)

// MockCodingService is a mock implementation of service.CodingService.
type MockCodingService struct {
	mock.Mock
}

func (m *MockCodingService) Generate(ctx context.Context, body io.Reader) (*domain.CodingResult, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CodingResult), args.Error(1)
}
