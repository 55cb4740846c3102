package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"talentmatch/internal/domain"
	"talentmatch/internal/service"
	"talentmatch/mocks"
)

func runWorker(worker *service.AnalysisQueueWorker, d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

func TestAnalysisQueueWorker_PollsAndDispatches(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	svc := new(mocks.MockAnalysisService)

	a := domain.ResumeAnalysis{ID: uuid.New(), Status: domain.AnalysisStatusProcessing, RetryCount: 1}
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.ResumeAnalysis{a}, nil).Once()
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.ResumeAnalysis{}, nil).Maybe()
	svc.On("ProcessAnalysis", mock.Anything, mock.AnythingOfType("*domain.ResumeAnalysis"), 3).Return().Maybe()

	worker := service.NewAnalysisQueueWorker(repo, svc, service.AnalysisQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	})
	runWorker(worker, 200*time.Millisecond)

	repo.AssertCalled(t, "ClaimQueued", mock.Anything, mock.AnythingOfType("int"))
	svc.AssertCalled(t, "ProcessAnalysis", mock.Anything, mock.MatchedBy(func(got *domain.ResumeAnalysis) bool {
		return got.ID == a.ID
	}), 3)
}

func TestAnalysisQueueWorker_RespectsConcurrencyCap(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	svc := new(mocks.MockAnalysisService)
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.ResumeAnalysis{}, nil).Maybe()

	cfg := service.AnalysisQueueConfig{PollInterval: 50 * time.Millisecond, MaxRetries: 3, Concurrency: 2}
	runWorker(service.NewAnalysisQueueWorker(repo, svc, cfg), 150*time.Millisecond)

	for _, call := range repo.Calls {
		if call.Method == "ClaimQueued" {
			assert.LessOrEqual(t, call.Arguments.Get(1).(int), cfg.Concurrency)
		}
	}
}

func TestAnalysisQueueWorker_WaitsForInFlight(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	svc := new(mocks.MockAnalysisService)

	finished := make(chan struct{})
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ResumeAnalysis{{ID: uuid.New()}}, nil).Once()
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.ResumeAnalysis{}, nil).Maybe()
	svc.On("ProcessAnalysis", mock.Anything, mock.Anything, 3).Run(func(mock.Arguments) {
		time.Sleep(150 * time.Millisecond)
		close(finished)
	}).Return().Once()

	worker := service.NewAnalysisQueueWorker(repo, svc, service.AnalysisQueueConfig{
		PollInterval: 20 * time.Millisecond, MaxRetries: 3, Concurrency: 1,
	})
	runWorker(worker, 60*time.Millisecond)

	select {
	case <-finished:
	default:
		t.Fatal("Start returned before the in-flight analysis finished")
	}
}

func TestAnalysisQueueWorker_RequeuesStale(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	svc := new(mocks.MockAnalysisService)
	repo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).Return([]domain.ResumeAnalysis{}, nil).Maybe()
	repo.On("RequeueStale", mock.Anything, 0, 3).Return(2, nil).Maybe()

	worker := service.NewAnalysisQueueWorker(repo, svc, service.AnalysisQueueConfig{
		PollInterval: 20 * time.Millisecond, MaxRetries: 3, Concurrency: 1, StaleAfter: 40 * time.Millisecond,
	})
	runWorker(worker, 150*time.Millisecond)

	repo.AssertCalled(t, "RequeueStale", mock.Anything, 0, 3)
}
