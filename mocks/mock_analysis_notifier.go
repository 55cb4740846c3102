package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
)

// MockAnalysisNotifier is a mock implementation of port.AnalysisNotifier.
type MockAnalysisNotifier struct {
	mock.Mock
}

func (m *MockAnalysisNotifier) PublishStatus(ctx context.Context, analysis *domain.ResumeAnalysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}
