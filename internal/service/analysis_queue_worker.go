package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"talentmatch/internal/port"
)

// AnalysisQueueConfig holds settings for the analysis queue worker.
type AnalysisQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	// JobTimeout bounds a single analysis.
	JobTimeout time.Duration
	// StaleAfter is how long an analysis may stay processing before it is
	// requeued. Zero disables the sweep.
	StaleAfter time.Duration
}

// AnalysisQueueWorker polls for queued analyses and runs them.
type AnalysisQueueWorker struct {
	repo    port.AnalysisRepository
	service AnalysisService
	cfg     AnalysisQueueConfig
	wg      sync.WaitGroup
}

// NewAnalysisQueueWorker creates a new AnalysisQueueWorker.
func NewAnalysisQueueWorker(repo port.AnalysisRepository, svc AnalysisService, cfg AnalysisQueueConfig) *AnalysisQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &AnalysisQueueWorker{repo: repo, service: svc, cfg: cfg}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight analyses have finished.
func (w *AnalysisQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)
	lastSweep := time.Now()

	slog.Info("analysisQueueWorker: started",
		"poll", w.cfg.PollInterval, "concurrency", w.cfg.Concurrency, "max_retries", w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			slog.Info("analysisQueueWorker: shutting down, waiting for in-flight analyses")
			w.wg.Wait()
			slog.Info("analysisQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			if w.cfg.StaleAfter > 0 && time.Since(lastSweep) >= w.cfg.StaleAfter {
				lastSweep = time.Now()
				w.requeueStale(ctx)
			}

			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			claimed, err := w.repo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("analysisQueueWorker: claiming analyses failed", "error", err)
				}
				continue
			}

			for i := range claimed {
				a := claimed[i]

				sem <- struct{}{}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }()

					// In-flight analyses finish even while the poll context shuts down.
					jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
					defer cancel()

					slog.Info("analysisQueueWorker: dispatching analysis", "analysis_id", a.ID, "attempt", a.RetryCount)
					w.service.ProcessAnalysis(jobCtx, &a, w.cfg.MaxRetries)
				}()
			}
		}
	}
}

func (w *AnalysisQueueWorker) requeueStale(ctx context.Context) {
	n, err := w.repo.RequeueStale(ctx, int(w.cfg.StaleAfter.Seconds()), w.cfg.MaxRetries)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("analysisQueueWorker: requeueing stale analyses failed", "error", err)
		}
		return
	}
	if n > 0 {
		slog.Info("analysisQueueWorker: requeued stale analyses", "count", n)
	}
}
