package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"talentmatch/internal/config"
	"talentmatch/internal/domain"
	"talentmatch/internal/pdftext"
	"talentmatch/internal/port"
)

// AnalyzeInput is the DTO for a resume analysis request.
type AnalyzeInput struct {
	ResumeRef   string
	CandidateID string
	Role        string
	ProfileHint string
	RecruiterID string
}

// DebugInfo carries the diagnostics returned with an analysis.
type DebugInfo struct {
	ObjectKey          string                     `json:"object_key"`
	FileSize           int                        `json:"file_size"`
	LocateAttempts     []domain.LocateAttempt     `json:"locate_attempts"`
	ExtractionAttempts []domain.ExtractionAttempt `json:"extraction_attempts"`
	Strategy           string                     `json:"strategy,omitempty"`
	Variant            string                     `json:"variant,omitempty"`
	QualityScore       float64                    `json:"quality_score"`
	Hint               string                     `json:"hint,omitempty"`
}

// AnalysisOutput is the response contract of a synchronous analysis.
type AnalysisOutput struct {
	AnalysisID      uuid.UUID `json:"analysis_id"`
	ExtractedText   string    `json:"extracted_text"`
	FullTextLength  int       `json:"full_text_length"`
	Analysis        string    `json:"analysis"`
	PDFParseSuccess bool      `json:"pdf_parse_success"`
	ModelUsed       string    `json:"model_used,omitempty"`
	DebugInfo       DebugInfo `json:"debug_info"`
}

// ExtractOutput is the result of a direct PDF text extraction.
type ExtractOutput struct {
	Text           string                     `json:"text"`
	FullTextLength int                        `json:"full_text_length"`
	Success        bool                       `json:"success"`
	Strategy       string                     `json:"strategy,omitempty"`
	Variant        string                     `json:"variant,omitempty"`
	QualityScore   float64                    `json:"quality_score"`
	Attempts       []domain.ExtractionAttempt `json:"attempts"`
	Hint           string                     `json:"hint,omitempty"`
	ElapsedMS      int64                      `json:"elapsed_ms"`
}

// LocateError is returned when the resume could not be found in storage. It
// unwraps to domain.ErrResumeNotFound.
type LocateError struct {
	Trace LocateTrace
	Err   error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("locating resume %q: %v", e.Trace.ObjectPath, e.Err)
}

func (e *LocateError) Unwrap() error { return e.Err }

// AnalysisService defines the resume analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisOutput, error)
	Extract(ctx context.Context, data []byte) (*ExtractOutput, error)
	Enqueue(ctx context.Context, input AnalyzeInput) (*domain.ResumeAnalysis, error)
	GetByID(ctx context.Context, id uuid.UUID, recruiterID string) (*domain.ResumeAnalysis, error)
	List(ctx context.Context, filter port.AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error)
	ListForExport(ctx context.Context, filter port.AnalysisFilter) ([]domain.ResumeAnalysis, error)
	ProcessAnalysis(ctx context.Context, a *domain.ResumeAnalysis, maxRetries int)
}

type analysisService struct {
	locator    *ResumeLocator
	extractor  port.TextExtractor
	summarizer port.Summarizer
	repo       port.AnalysisRepository
	notifier   port.AnalysisNotifier
	cfg        config.AnalysisConfig
	maxChars   int
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	locator *ResumeLocator,
	extractor port.TextExtractor,
	summarizer port.Summarizer,
	repo port.AnalysisRepository,
	notifier port.AnalysisNotifier,
	cfg config.AnalysisConfig,
	maxInputChars int,
) AnalysisService {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = "Software Engineer"
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = 3000
	}
	return &analysisService{
		locator:    locator,
		extractor:  extractor,
		summarizer: summarizer,
		repo:       repo,
		notifier:   notifier,
		cfg:        cfg,
		maxChars:   maxInputChars,
	}
}

func (s *analysisService) newRecord(input AnalyzeInput) (*domain.ResumeAnalysis, error) {
	if strings.TrimSpace(input.ResumeRef) == "" {
		return nil, domain.ErrMissingResumeRef
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = s.cfg.DefaultRole
	}
	return &domain.ResumeAnalysis{
		ID:          uuid.New(),
		RecruiterID: input.RecruiterID,
		CandidateID: NormalizeCandidateID(input.CandidateID),
		ResumeRef:   strings.TrimSpace(input.ResumeRef),
		Role:        role,
		ProfileHint: input.ProfileHint,
		Status:      domain.AnalysisStatusQueued,
	}, nil
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisOutput, error) {
	rec, err := s.newRecord(input)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.AnalysisStatusProcessing

	slog.Info("analysisService.Analyze: starting",
		"analysis_id", rec.ID, "recruiter_id", rec.RecruiterID, "candidate_id", rec.CandidateID, "role", rec.Role)

	out, runErr := s.run(ctx, rec)

	// A failed write must not cost the caller an analysis that already ran.
	if err := s.repo.Create(context.WithoutCancel(ctx), rec); err != nil {
		slog.Error("analysisService.Analyze: persisting analysis failed", "analysis_id", rec.ID, "error", err)
	} else {
		s.publish(ctx, rec)
	}
	return out, runErr
}

// run locates, extracts and summarizes, filling rec with the outcome. rec's
// status is terminal when run returns.
func (s *analysisService) run(ctx context.Context, rec *domain.ResumeAnalysis) (*AnalysisOutput, error) {
	data, trace, err := s.locator.Fetch(ctx, rec.ResumeRef, rec.CandidateID)
	rec.ObjectKey = trace.Key
	if err != nil {
		s.fail(rec, err)
		if errors.Is(err, domain.ErrResumeNotFound) {
			return nil, &LocateError{Trace: trace, Err: err}
		}
		return nil, fmt.Errorf("locating resume: %w", err)
	}

	res, err := s.extract(ctx, data)
	if err != nil {
		s.fail(rec, err)
		return nil, err
	}

	attempts := AttemptViews(res.Attempts)
	rec.ParseSuccess = res.Succeeded
	rec.Strategy = res.Strategy
	rec.Variant = res.Variant
	rec.QualityScore = res.BestScore
	rec.TextLength = utf8.RuneCountInString(res.Text)
	rec.ExtractedText = res.Text
	rec.Hint = res.Hint()
	if encoded, err := json.Marshal(attempts); err != nil {
		slog.Warn("analysisService: encoding extraction log failed", "analysis_id", rec.ID, "error", err)
	} else {
		rec.ExtractionLog = encoded
	}

	summary, err := s.summarizer.Summarize(ctx, port.SummaryInput{
		Text:     textForSummary(res, rec.ProfileHint),
		Role:     rec.Role,
		MaxChars: s.maxChars,
	})
	if err != nil {
		slog.Warn("analysisService: summarization failed", "analysis_id", rec.ID, "error", err)
		rec.Analysis = "Analysis skipped: " + err.Error()
	} else {
		rec.Analysis = summary.Analysis
		rec.ModelUsed = summary.ModelUsed
	}

	now := time.Now().UTC()
	rec.Status = domain.AnalysisStatusCompleted
	rec.CompletedAt = &now

	return &AnalysisOutput{
		AnalysisID:      rec.ID,
		ExtractedText:   TruncateRunes(res.Text, s.cfg.PreviewLength),
		FullTextLength:  rec.TextLength,
		Analysis:        rec.Analysis,
		PDFParseSuccess: res.Succeeded,
		ModelUsed:       rec.ModelUsed,
		DebugInfo: DebugInfo{
			ObjectKey:          trace.Key,
			FileSize:           len(data),
			LocateAttempts:     trace.Attempts,
			ExtractionAttempts: attempts,
			Strategy:           res.Strategy,
			Variant:            res.Variant,
			QualityScore:       res.BestScore,
			Hint:               rec.Hint,
		},
	}, nil
}

// extract runs the extractor under the configured overall budget. A
// non-PDF input is reported as domain.ErrInvalidPDF.
func (s *analysisService) extract(ctx context.Context, data []byte) (*pdftext.Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	res, err := s.extractor.Extract(ctx, data)
	if err != nil {
		var malformed *pdftext.MalformedInputError
		if errors.As(err, &malformed) {
			return nil, fmt.Errorf("%w: header %q", domain.ErrInvalidPDF, malformed.HeaderSample)
		}
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return res, nil
}

func (s *analysisService) fail(rec *domain.ResumeAnalysis, err error) {
	now := time.Now().UTC()
	rec.Status = domain.AnalysisStatusFailed
	rec.ErrorMessage = err.Error()
	rec.CompletedAt = &now
}

func (s *analysisService) Extract(ctx context.Context, data []byte) (*ExtractOutput, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyBody
	}
	res, err := s.extract(ctx, data)
	if err != nil {
		return nil, err
	}
	out := &ExtractOutput{
		Text:           res.Text,
		FullTextLength: utf8.RuneCountInString(res.Text),
		Success:        res.Succeeded,
		Strategy:       res.Strategy,
		Variant:        res.Variant,
		QualityScore:   res.BestScore,
		Attempts:       AttemptViews(res.Attempts),
		Hint:           res.Hint(),
		ElapsedMS:      res.TotalElapsed.Milliseconds(),
	}
	if !res.Succeeded {
		return out, domain.ErrNoExtractableText
	}
	return out, nil
}

func (s *analysisService) Enqueue(ctx context.Context, input AnalyzeInput) (*domain.ResumeAnalysis, error) {
	rec, err := s.newRecord(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}
	slog.Info("analysisService.Enqueue: analysis queued", "analysis_id", rec.ID, "recruiter_id", rec.RecruiterID)
	s.publish(ctx, rec)
	return rec, nil
}

// ProcessAnalysis runs a claimed analysis to completion. Failures caused by
// the worker's own deadline are requeued until maxRetries attempts were made.
func (s *analysisService) ProcessAnalysis(ctx context.Context, a *domain.ResumeAnalysis, maxRetries int) {
	a.Status = domain.AnalysisStatusProcessing
	s.publish(ctx, a)

	_, err := s.run(ctx, a)
	if err != nil && ctx.Err() != nil && a.RetryCount < maxRetries {
		slog.Warn("analysisService.ProcessAnalysis: requeueing after deadline",
			"analysis_id", a.ID, "attempt", a.RetryCount, "error", err)
		if uerr := s.repo.UpdateStatus(context.WithoutCancel(ctx), a.ID, domain.AnalysisStatusQueued, ""); uerr != nil {
			slog.Error("analysisService.ProcessAnalysis: requeue failed", "analysis_id", a.ID, "error", uerr)
		}
		return
	}
	if err != nil {
		slog.Info("analysisService.ProcessAnalysis: analysis failed", "analysis_id", a.ID, "error", err)
	}

	if uerr := s.repo.UpdateResult(context.WithoutCancel(ctx), a); uerr != nil {
		slog.Error("analysisService.ProcessAnalysis: saving result failed", "analysis_id", a.ID, "error", uerr)
		return
	}
	s.publish(ctx, a)
}

func (s *analysisService) GetByID(ctx context.Context, id uuid.UUID, recruiterID string) (*domain.ResumeAnalysis, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recruiterID != "" && a.RecruiterID != recruiterID {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func (s *analysisService) List(ctx context.Context, filter port.AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error) {
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *analysisService) ListForExport(ctx context.Context, filter port.AnalysisFilter) ([]domain.ResumeAnalysis, error) {
	return s.repo.ListAll(ctx, filter)
}

func (s *analysisService) publish(ctx context.Context, a *domain.ResumeAnalysis) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishStatus(context.WithoutCancel(ctx), a); err != nil {
		slog.Warn("analysisService: publishing status failed", "analysis_id", a.ID, "status", a.Status, "error", err)
	}
}

// textForSummary picks what the summarizer sees: the extracted text on
// success, otherwise the caller's hint. Rejected text is never summarized;
// an empty result becomes a placeholder inside the prompt.
func textForSummary(res *pdftext.Result, hint string) string {
	if res.Succeeded && strings.TrimSpace(res.Text) != "" {
		return res.Text
	}
	return strings.TrimSpace(hint)
}

// AttemptViews converts the extractor's attempt log to its serialised form.
func AttemptViews(attempts []pdftext.Attempt) []domain.ExtractionAttempt {
	out := make([]domain.ExtractionAttempt, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		out = append(out, domain.ExtractionAttempt{
			Strategy:  a.Strategy,
			Variant:   a.Variant,
			Success:   a.Succeeded,
			ErrorKind: string(a.Kind()),
			Error:     a.ErrorMessage(),
			Length:    a.TextLength,
			Score:     a.Score,
			ElapsedMS: a.Elapsed.Milliseconds(),
		})
	}
	return out
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
