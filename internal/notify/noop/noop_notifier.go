package noop

import (
	"context"
	"log/slog"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

// Notifier drops every status update after logging it at debug level.
type Notifier struct{}

// NewNotifier creates a no-op AnalysisNotifier.
func NewNotifier() port.AnalysisNotifier {
	return &Notifier{}
}

func (n *Notifier) PublishStatus(_ context.Context, a *domain.ResumeAnalysis) error {
	slog.Debug("noop notifier: analysis status", "analysis_id", a.ID, "status", a.Status)
	return nil
}

func (n *Notifier) Close() error { return nil }
