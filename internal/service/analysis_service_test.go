package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talentmatch/internal/config"
	"talentmatch/internal/domain"
	"talentmatch/internal/pdftext"
	"talentmatch/internal/port"
	"talentmatch/internal/service"
	"talentmatch/mocks"
)

const testResumeText = "Jane Doe Senior Software Engineer with experience in Go, Kubernetes and distributed systems."

var testPDF = []byte("%PDF-1.4\n...")

type analysisDeps struct {
	storage    *mocks.MockObjectStorage
	extractor  *mocks.MockTextExtractor
	summarizer *mocks.MockSummarizer
	repo       *mocks.MockAnalysisRepo
	notifier   *mocks.MockAnalysisNotifier
}

func newTestAnalysisService(cfg config.AnalysisConfig) (service.AnalysisService, *analysisDeps) {
	d := &analysisDeps{
		storage:    new(mocks.MockObjectStorage),
		extractor:  new(mocks.MockTextExtractor),
		summarizer: new(mocks.MockSummarizer),
		repo:       new(mocks.MockAnalysisRepo),
		notifier:   new(mocks.MockAnalysisNotifier),
	}
	locator := service.NewResumeLocator(d.storage, "resumes")
	svc := service.NewAnalysisService(locator, d.extractor, d.summarizer, d.repo, d.notifier, cfg, 15000)
	return svc, d
}

func successResult(text string) *pdftext.Result {
	return &pdftext.Result{
		Text:      text,
		Succeeded: true,
		BestScore: 42,
		Strategy:  "pdftotext",
		Variant:   "layout-utf8",
		Attempts: []pdftext.Attempt{{
			Strategy: "pdftotext", Variant: "layout-utf8", Succeeded: true,
			TextLength: len(text), Score: 42, Elapsed: 12 * time.Millisecond,
		}},
	}
}

func failedResult(text string) *pdftext.Result {
	attempts := []pdftext.Attempt{{
		Strategy: "pdftotext", Variant: "layout-utf8",
		Err: &pdftext.StrategyExecutionError{Strategy: "pdftotext", Variant: "layout-utf8", Err: errors.New("exit status 1")},
	}}
	return &pdftext.Result{
		Text:     text,
		Attempts: attempts,
		Failure:  &pdftext.NoExtractableTextError{Attempts: attempts, Hint: "Run it through OCR."},
	}
}

func TestAnalyze_MissingResumeRef(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "  "})

	assert.ErrorIs(t, err, domain.ErrMissingResumeRef)
	d.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
	d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnalyze_Success(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{PreviewLength: 8})

	d.storage.On("Download", mock.Anything, "resumes", "user_9/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(successResult(testResumeText), nil)
	d.summarizer.On("Summarize", mock.Anything, port.SummaryInput{
		Text: testResumeText, Role: "Software Engineer", MaxChars: 15000,
	}).Return(&port.SummaryOutput{Analysis: "Summary: strong fit", ModelUsed: "gpt-4o-mini"}, nil)
	d.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.ResumeAnalysis) bool {
		return a.Status == domain.AnalysisStatusCompleted && a.ParseSuccess &&
			a.CandidateID == "9" && a.ObjectKey == "user_9/cv.pdf" && a.CompletedAt != nil &&
			json.Valid(a.ExtractionLog) && strings.Contains(string(a.ExtractionLog), `"strategy"`)
	})).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		ResumeRef: "https://x.supabase.co/storage/v1/object/public/resumes/user_9/cv.pdf", CandidateID: "user_9", RecruiterID: "rec-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", out.ExtractedText)
	assert.Equal(t, len([]rune(testResumeText)), out.FullTextLength)
	assert.True(t, out.PDFParseSuccess)
	assert.Equal(t, "Summary: strong fit", out.Analysis)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	assert.Equal(t, "user_9/cv.pdf", out.DebugInfo.ObjectKey)
	assert.Equal(t, len(testPDF), out.DebugInfo.FileSize)
	require.Len(t, out.DebugInfo.ExtractionAttempts, 1)
	assert.Equal(t, int64(12), out.DebugInfo.ExtractionAttempts[0].ElapsedMS)
	assert.NotEqual(t, uuid.Nil, out.AnalysisID)
	d.repo.AssertExpectations(t)
	d.notifier.AssertNumberOfCalls(t, "PublishStatus", 1)
}

func TestAnalyze_ExtractionFailedUsesProfileHint(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(failedResult("x9 #"), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.MatchedBy(func(in port.SummaryInput) bool {
		return in.Text == "Backend developer, 5 years" && in.Role == "Data Engineer"
	})).Return(&port.SummaryOutput{Analysis: "ok"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		ResumeRef: "a/cv.pdf", Role: "Data Engineer", ProfileHint: "Backend developer, 5 years",
	})

	require.NoError(t, err)
	assert.False(t, out.PDFParseSuccess)
	assert.Equal(t, "x9 #", out.ExtractedText)
	assert.Equal(t, "Run it through OCR.", out.DebugInfo.Hint)
	assert.Equal(t, "execution", out.DebugInfo.ExtractionAttempts[0].ErrorKind)
	assert.Contains(t, out.DebugInfo.ExtractionAttempts[0].Error, "exit status 1")
}

func TestAnalyze_NoTextNoHintPassesEmptyText(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(failedResult(""), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.MatchedBy(func(in port.SummaryInput) bool {
		return in.Text == ""
	})).Return(&port.SummaryOutput{Analysis: "insufficient information"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})

	require.NoError(t, err)
	assert.Equal(t, 0, out.FullTextLength)
	d.summarizer.AssertExpectations(t)
}

func TestAnalyze_RejectedTextIsNotSummarized(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(failedResult("x9 # ~~ \x00 obj"), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.MatchedBy(func(in port.SummaryInput) bool {
		return in.Text == ""
	})).Return(&port.SummaryOutput{Analysis: "insufficient information"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf", ProfileHint: "   "})

	require.NoError(t, err)
	assert.False(t, out.PDFParseSuccess)
	assert.Equal(t, "insufficient information", out.Analysis)
	d.summarizer.AssertExpectations(t)
}

func TestAnalyze_SummarizerFailureIsNotAnError(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(successResult(testResumeText), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.Anything).Return(nil, errors.New("all summarizers failed: quota"))
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "Analysis skipped: all summarizers failed: quota", out.Analysis)
	assert.True(t, out.PDFParseSuccess)
}

func TestAnalyze_ResumeNotFound(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", mock.Anything).Return(nil, domain.ErrNotFound)
	d.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.ResumeAnalysis) bool {
		return a.Status == domain.AnalysisStatusFailed && a.ErrorMessage != ""
	})).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf", CandidateID: "3"})

	assert.ErrorIs(t, err, domain.ErrResumeNotFound)
	var locErr *service.LocateError
	require.True(t, errors.As(err, &locErr))
	assert.Len(t, locErr.Trace.Attempts, 6)
	d.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	d.repo.AssertExpectations(t)
}

func TestAnalyze_InvalidPDF(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return([]byte("<html>"), nil)
	d.extractor.On("Extract", mock.Anything, []byte("<html>")).
		Return(nil, &pdftext.MalformedInputError{HeaderSample: "<html>"})
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})

	assert.ErrorIs(t, err, domain.ErrInvalidPDF)
	d.summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestAnalyze_PersistenceFailureIsSwallowed(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(successResult(testResumeText), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.Anything).Return(&port.SummaryOutput{Analysis: "ok"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	out, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Analysis)
	d.notifier.AssertNotCalled(t, "PublishStatus", mock.Anything, mock.Anything)
}

func TestAnalyze_AppliesOverallDeadline(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{Timeout: time.Minute})

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), testPDF).Return(successResult(testResumeText), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.Anything).Return(&port.SummaryOutput{Analysis: "ok"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Analyze(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})
	require.NoError(t, err)
	d.extractor.AssertExpectations(t)
}

func TestExtract(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	_, err := svc.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBody)

	good := []byte("%PDF-1.7 good")
	d.extractor.On("Extract", mock.Anything, good).Return(successResult(testResumeText), nil)
	out, err := svc.Extract(context.Background(), good)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, testResumeText, out.Text)
	assert.Equal(t, "pdftotext", out.Strategy)

	bad := []byte("%PDF-1.7 scanned")
	d.extractor.On("Extract", mock.Anything, bad).Return(failedResult(""), nil)
	out, err = svc.Extract(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrNoExtractableText)
	require.NotNil(t, out)
	assert.False(t, out.Success)
	assert.Equal(t, "Run it through OCR.", out.Hint)
	assert.Len(t, out.Attempts, 1)
}

func TestEnqueue(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})

	d.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.ResumeAnalysis) bool {
		return a.Status == domain.AnalysisStatusQueued && a.Role == "Software Engineer" && a.RecruiterID == "rec-1"
	})).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	a, err := svc.Enqueue(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf", RecruiterID: "rec-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusQueued, a.Status)
	d.storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnqueue_RepoError(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})
	d.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Enqueue(context.Background(), service.AnalyzeInput{ResumeRef: "a/cv.pdf"})
	assert.Error(t, err)
	d.notifier.AssertNotCalled(t, "PublishStatus", mock.Anything, mock.Anything)
}

func TestGetByID_Ownership(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})
	id := uuid.New()
	d.repo.On("GetByID", mock.Anything, id).Return(&domain.ResumeAnalysis{ID: id, RecruiterID: "rec-1"}, nil)

	a, err := svc.GetByID(context.Background(), id, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	_, err = svc.GetByID(context.Background(), id, "rec-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProcessAnalysis_Completes(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})
	a := &domain.ResumeAnalysis{ID: uuid.New(), ResumeRef: "a/cv.pdf", Role: "QA Engineer", RetryCount: 1}

	d.storage.On("Download", mock.Anything, "resumes", "a/cv.pdf").Return(testPDF, nil)
	d.extractor.On("Extract", mock.Anything, testPDF).Return(successResult(testResumeText), nil)
	d.summarizer.On("Summarize", mock.Anything, mock.Anything).Return(&port.SummaryOutput{Analysis: "ok", ModelUsed: "claude"}, nil)
	d.repo.On("UpdateResult", mock.Anything, a).Return(nil)
	d.notifier.On("PublishStatus", mock.Anything, a).Return(nil)

	svc.ProcessAnalysis(context.Background(), a, 3)

	assert.Equal(t, domain.AnalysisStatusCompleted, a.Status)
	assert.Equal(t, "claude", a.ModelUsed)
	assert.JSONEq(t, `[{"strategy":"pdftotext","variant":"layout-utf8","success":true,"length":92,"score":42,"elapsed_ms":12}]`,
		string(a.ExtractionLog))
	d.repo.AssertExpectations(t)
	d.notifier.AssertNumberOfCalls(t, "PublishStatus", 2)
}

func TestProcessAnalysis_RequeuesOnDeadline(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})
	a := &domain.ResumeAnalysis{ID: uuid.New(), ResumeRef: "a/cv.pdf", RetryCount: 1}

	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)
	d.repo.On("UpdateStatus", mock.Anything, a.ID, domain.AnalysisStatusQueued, "").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.ProcessAnalysis(ctx, a, 3)

	d.repo.AssertExpectations(t)
	d.repo.AssertNotCalled(t, "UpdateResult", mock.Anything, mock.Anything)
}

func TestProcessAnalysis_FailsWhenRetriesExhausted(t *testing.T) {
	svc, d := newTestAnalysisService(config.AnalysisConfig{})
	a := &domain.ResumeAnalysis{ID: uuid.New(), ResumeRef: "a/cv.pdf", RetryCount: 3}

	d.notifier.On("PublishStatus", mock.Anything, mock.Anything).Return(nil)
	d.repo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(r *domain.ResumeAnalysis) bool {
		return r.Status == domain.AnalysisStatusFailed
	})).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.ProcessAnalysis(ctx, a, 3)

	d.repo.AssertExpectations(t)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", service.TruncateRunes("héllo wörld", 5))
	assert.Equal(t, "short", service.TruncateRunes("short", 10))
	assert.Equal(t, "keep", service.TruncateRunes("keep", 0))
	assert.Len(t, []rune(service.TruncateRunes(strings.Repeat("ж", 4000), 3000)), 3000)
}
