// Package pdftext extracts plain text from resume PDFs. Independent
// strategies are tried in a fixed order of reliability, their output is scored
// for plausibility, and the best candidate is returned together with a log of
// every attempt.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"talentmatch/internal/config"
	"talentmatch/internal/pdftext/quality"
)

// State is a step of the extraction state machine, reported in debug logs.
type State string

const (
	StateInit                State = "init"
	StateValidatingSignature State = "validating_signature"
	StateTryingStrategy      State = "trying_strategy"
	StateScoring             State = "scoring"
	StateDone                State = "done"
)

const defaultEarlyAcceptLength = 20

// Extractor runs the strategy pipeline. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	stages            []Stage
	scorer            *quality.Scorer
	earlyAcceptLength int
	logger            *slog.Logger
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithScorer replaces the default quality scorer.
func WithScorer(s *quality.Scorer) Option {
	return func(e *Extractor) { e.scorer = s }
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithEarlyAcceptLength sets the trimmed length an early-accepting strategy
// must exceed to end the pipeline.
func WithEarlyAcceptLength(n int) Option {
	return func(e *Extractor) { e.earlyAcceptLength = n }
}

// New creates an Extractor running stages in the given order.
func New(stages []Stage, opts ...Option) *Extractor {
	e := &Extractor{
		stages:            stages,
		scorer:            quality.Default(),
		earlyAcceptLength: defaultEarlyAcceptLength,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewExtractor builds the standard pipeline: pdftotext, the structured
// parser, the raw-byte scan and, when enabled, OCR. A nil runner uses
// ExecRunner.
func NewExtractor(cfg *config.ExtractionConfig, runner Runner, opts ...Option) (*Extractor, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.VocabularyFile != "" {
		f, err := os.Open(cfg.VocabularyFile)
		if err != nil {
			return nil, fmt.Errorf("opening vocabulary: %w", err)
		}
		defer f.Close()
		words, err := quality.LoadVocabulary(f)
		if err != nil {
			return nil, err
		}
		opts = append([]Option{WithScorer(quality.NewScorer(words))}, opts...)
	}
	if cfg.EarlyAcceptLength > 0 {
		opts = append([]Option{WithEarlyAcceptLength(cfg.EarlyAcceptLength)}, opts...)
	}

	tool := NewToolStrategy(ToolConfig{
		Binary:         cfg.PdftotextPath,
		VariantTimeout: cfg.ToolVariantTimeout,
		TempDir:        cfg.TempDir,
		MinTextLength:  cfg.EarlyAcceptLength,
	}, runner)
	structured := NewStructuredStrategy(StructuredConfig{
		Timeout:       cfg.StructuredTimeout,
		LineTolerance: cfg.LineTolerance,
	})

	stages := []Stage{
		{Strategy: tool, Budget: tool.Budget(), EarlyAccept: true},
		{Strategy: structured, Budget: structured.cfg.Timeout + time.Second, EarlyAccept: true},
		{Strategy: NewRawScanStrategy(), Budget: cfg.RawScanTimeout},
	}
	if cfg.OCR.Enabled {
		ocr := NewOCRStrategy(OCRConfig{
			Pdftoppm:    cfg.OCR.PdftoppmPath,
			Tesseract:   cfg.OCR.TesseractPath,
			Language:    cfg.OCR.Language,
			DPI:         cfg.OCR.DPI,
			MaxPages:    cfg.OCR.MaxPages,
			PageTimeout: cfg.OCR.PageTimeout,
			TempDir:     cfg.TempDir,
		}, runner)
		stages = append(stages, Stage{Strategy: ocr, Budget: ocr.Budget()})
	}
	return New(stages, opts...), nil
}

// Extract runs the pipeline over data. The only error it returns is
// *MalformedInputError; every other failure is reported inside the Result,
// with Failure set to a *NoExtractableTextError when nothing acceptable was
// found. When ctx expires, strategies not yet started are skipped and the
// result is built from what was gathered.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()
	e.trace(StateInit)

	e.trace(StateValidatingSignature)
	sig := ValidateSignature(data)
	if !sig.Valid {
		e.logger.Info("pdftext: rejected input without PDF signature", "header", sig.HeaderSample, "bytes", len(data))
		e.trace(StateDone, "outcome", "malformed_input")
		return nil, &MalformedInputError{HeaderSample: sig.HeaderSample}
	}

	doc := NewDocument(data)
	res := &Result{}
	var best *Candidate

	for i, st := range e.stages {
		name := st.Strategy.Name()
		if ctx.Err() != nil {
			res.Attempts = append(res.Attempts, Attempt{
				Strategy: name,
				Variant:  "all",
				Err:      &StrategyExecutionError{Strategy: name, Variant: "all", Err: ErrDeadlineExceeded},
			})
			continue
		}

		e.trace(StateTryingStrategy, "index", i, "strategy", name)
		for _, o := range runStage(ctx, st, doc) {
			att := Attempt{
				Strategy:  name,
				Variant:   o.Variant,
				Succeeded: o.Err == nil,
				Err:       o.Err,
				Elapsed:   o.Elapsed,
			}
			text := strings.TrimSpace(o.Text)
			if att.Succeeded {
				att.TextLength = utf8.RuneCountInString(text)
				att.Score = e.scorer.Score(text)
			}
			res.Attempts = append(res.Attempts, att)
			e.logAttempt(&att)

			if !att.Succeeded {
				continue
			}
			if best == nil || att.Score > best.Score {
				best = &Candidate{Text: text, Score: att.Score, Source: att}
			}
			if st.EarlyAccept && att.TextLength > e.earlyAcceptLength {
				e.trace(StateScoring, "early_accept", true)
				return e.finish(res, &Candidate{Text: text, Score: att.Score, Source: att}, true, start), nil
			}
		}
	}

	e.trace(StateScoring, "early_accept", false)
	if best != nil && quality.Accept(best.Text, best.Score) {
		return e.finish(res, best, true, start), nil
	}
	return e.finish(res, best, false, start), nil
}

func (e *Extractor) finish(res *Result, c *Candidate, ok bool, start time.Time) *Result {
	if c != nil {
		res.Text = c.Text
		res.BestScore = c.Score
		res.Strategy = c.Source.Strategy
		res.Variant = c.Source.Variant
	}
	res.Succeeded = ok
	res.TotalElapsed = time.Since(start)

	if !ok {
		res.Failure = &NoExtractableTextError{
			Attempts:  res.Attempts,
			BestScore: res.BestScore,
			Hint:      remediationHint(res.Attempts, c),
		}
		e.logger.Info("pdftext: no extractable text",
			"attempts", len(res.Attempts),
			"best_score", res.BestScore,
			"elapsed_ms", res.TotalElapsed.Milliseconds(),
		)
	} else {
		e.logger.Info("pdftext: extracted text",
			"strategy", res.Strategy,
			"variant", res.Variant,
			"chars", utf8.RuneCountInString(res.Text),
			"score", res.BestScore,
			"attempts", len(res.Attempts),
			"elapsed_ms", res.TotalElapsed.Milliseconds(),
		)
	}
	e.trace(StateDone, "succeeded", ok)
	return res
}

func (e *Extractor) logAttempt(a *Attempt) {
	if a.Succeeded {
		e.logger.Debug("pdftext: attempt succeeded",
			"strategy", a.Strategy,
			"variant", a.Variant,
			"chars", a.TextLength,
			"score", a.Score,
			"elapsed_ms", a.Elapsed.Milliseconds(),
		)
		return
	}
	e.logger.Debug("pdftext: attempt failed",
		"strategy", a.Strategy,
		"variant", a.Variant,
		"kind", a.Kind(),
		"error", a.ErrorMessage(),
		"elapsed_ms", a.Elapsed.Milliseconds(),
	)
}

func (e *Extractor) trace(s State, args ...any) {
	e.logger.Debug("pdftext: state", append([]any{"state", s}, args...)...)
}

func remediationHint(attempts []Attempt, best *Candidate) string {
	var hints []string
	if best != nil {
		hints = append(hints, fmt.Sprintf("Recovered text scored %.1f and looks like encoding noise; the fonts may lack a Unicode mapping.", best.Score))
	}
	hints = append(hints, "The document appears to be image-based or to use custom font encoding. Run it through OCR (for example Tesseract) and retry.")
	if hasKind(attempts, KindToolMissing) {
		hints = append(hints, "pdftotext (poppler-utils) is not installed; installing it enables the most reliable strategy.")
	}
	if hasKind(attempts, KindTimeout) || hasKind(attempts, KindDeadline) {
		hints = append(hints, "Some strategies ran out of time; a longer deadline may help.")
	}
	return strings.Join(hints, " ")
}

func hasKind(attempts []Attempt, k ErrorKind) bool {
	for i := range attempts {
		if attempts[i].Kind() == k {
			return true
		}
	}
	return false
}
