package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"talentmatch/internal/port"
)

// MockSummarizer is a mock implementation of port.Summarizer.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, input port.SummaryInput) (*port.SummaryOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SummaryOutput), args.Error(1)
}
