package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

// MockAnalysisRepo is a mock implementation of port.AnalysisRepository.
type MockAnalysisRepo struct {
	mock.Mock
}

func (m *MockAnalysisRepo) Create(ctx context.Context, a *domain.ResumeAnalysis) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeAnalysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisRepo) List(ctx context.Context, filter port.AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ResumeAnalysis), args.Int(1), args.Error(2)
}

func (m *MockAnalysisRepo) ListAll(ctx context.Context, filter port.AnalysisFilter) ([]domain.ResumeAnalysis, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisRepo) UpdateResult(ctx context.Context, a *domain.ResumeAnalysis) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalysisRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockAnalysisRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ResumeAnalysis, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResumeAnalysis), args.Error(1)
}

func (m *MockAnalysisRepo) RequeueStale(ctx context.Context, olderThanSecs, maxRetries int) (int, error) {
	args := m.Called(ctx, olderThanSecs, maxRetries)
	return args.Int(0), args.Error(1)
}
