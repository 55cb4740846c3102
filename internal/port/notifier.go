package port

import (
	"context"

	"talentmatch/internal/domain"
)

// AnalysisNotifier publishes analysis status changes to interested clients.
// Delivery is best effort.
type AnalysisNotifier interface {
	PublishStatus(ctx context.Context, analysis *domain.ResumeAnalysis) error
	Close() error
}
