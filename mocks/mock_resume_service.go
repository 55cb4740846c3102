package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
	"talentmatch/internal/service"
)

// MockResumeService is a mock implementation of service.ResumeService.
type MockResumeService struct {
	mock.Mock
}

func (m *MockResumeService) Upload(ctx context.Context, input service.ResumeUploadInput) (*service.ResumeUploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResumeUploadOutput), args.Error(1)
}

func (m *MockResumeService) ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error) {
	args := m.Called(ctx, uploadedBy, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ResumeFile), args.Int(1), args.Error(2)
}
