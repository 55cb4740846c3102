package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"talentmatch/internal/pdftext"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, data []byte) (*pdftext.Result, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdftext.Result), args.Error(1)
}
