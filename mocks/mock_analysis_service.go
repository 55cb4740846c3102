package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
	"talentmatch/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalysisOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisOutput), args.Error(1)
}

func (m *MockAnalysisService) Extract(ctx context.Context, data []byte) (*service.ExtractOutput, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractOutput), args.Error(1)
}

func (m *MockAnalysisService) Enqueue(ctx context.Context, input service.AnalyzeInput) (*domain.ResumeAnalysis, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisService) GetByID(ctx context.Context, id uuid.UUID, recruiterID string) (*domain.ResumeAnalysis, error) {
	args := m.Called(ctx, id, recruiterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisService) List(ctx context.Context, filter port.AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ResumeAnalysis), args.Int(1), args.Error(2)
}

func (m *MockAnalysisService) ListForExport(ctx context.Context, filter port.AnalysisFilter) ([]domain.ResumeAnalysis, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisService) ProcessAnalysis(ctx context.Context, a *domain.ResumeAnalysis, maxRetries int) {
	m.Called(ctx, a, maxRetries)
}
