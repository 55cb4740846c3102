package port

import (
	"context"

	"github.com/google/uuid"

	"talentmatch/internal/domain"
)

// ResumeFileRepository defines the contract for uploaded resume metadata.
type ResumeFileRepository interface {
	Create(ctx context.Context, file *domain.ResumeFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeFile, error)
	ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
}

// AnalysisFilter narrows analysis listings.
type AnalysisFilter struct {
	RecruiterID string
	CandidateID string
	Status      domain.AnalysisStatus
}

// AnalysisRepository defines the contract for resume analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, a *domain.ResumeAnalysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeAnalysis, error)
	List(ctx context.Context, filter AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error)
	// ListAll returns every analysis matching filter, newest first, for export.
	ListAll(ctx context.Context, filter AnalysisFilter) ([]domain.ResumeAnalysis, error)
	UpdateResult(ctx context.Context, a *domain.ResumeAnalysis) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus, errMsg string) error
	// ClaimQueued atomically moves up to limit queued analyses to processing
	// and returns them. Concurrent callers never receive the same row.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ResumeAnalysis, error)
	// RequeueStale moves processing rows untouched for olderThanSecs back to
	// queued, failing those that have exhausted maxRetries.
	RequeueStale(ctx context.Context, olderThanSecs, maxRetries int) (int, error)
}
