package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
)

// MockResumeFileRepo is a mock implementation of port.ResumeFileRepository.
type MockResumeFileRepo struct {
	mock.Mock
}

func (m *MockResumeFileRepo) Create(ctx context.Context, file *domain.ResumeFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockResumeFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeFile), args.Error(1)
}

func (m *MockResumeFileRepo) ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error) {
	args := m.Called(ctx, uploadedBy, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ResumeFile), args.Int(1), args.Error(2)
}

func (m *MockResumeFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
