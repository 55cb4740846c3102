package pdftext

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies a failed attempt in the attempt log.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindTimeout     ErrorKind = "timeout"
	KindDeadline    ErrorKind = "deadline"
	KindExecution   ErrorKind = "execution"
	KindToolMissing ErrorKind = "tool_missing"
	KindNoTextLayer ErrorKind = "no_text_layer"
	KindNoFragments ErrorKind = "no_fragments"
	KindEmptyOutput ErrorKind = "empty_output"
)

var (
	// ErrEmptyOutput is recorded when a variant ran cleanly but produced only whitespace.
	ErrEmptyOutput = errors.New("variant produced no text")
	// ErrNoFragments is recorded when the raw-byte scan found nothing text-like under an encoding.
	ErrNoFragments = errors.New("no text fragments found")
	// ErrDeadlineExceeded is recorded for strategies never started because the caller's deadline passed.
	ErrDeadlineExceeded = errors.New("overall deadline exceeded before strategy started")
)

// MalformedInputError is returned when the input does not carry a PDF signature.
// No strategy is attempted for such input.
type MalformedInputError struct {
	HeaderSample string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("pdftext: input is not a PDF (header %q)", e.HeaderSample)
}

// StrategyTimeoutError marks a variant or strategy that ran past its time budget.
type StrategyTimeoutError struct {
	Strategy string
	Variant  string
	Budget   time.Duration
}

func (e *StrategyTimeoutError) Error() string {
	return fmt.Sprintf("pdftext: %s/%s timed out after %s", e.Strategy, e.Variant, e.Budget)
}

// StrategyExecutionError marks a variant that failed while running.
type StrategyExecutionError struct {
	Strategy string
	Variant  string
	Err      error
}

func (e *StrategyExecutionError) Error() string {
	return fmt.Sprintf("pdftext: %s/%s failed: %v", e.Strategy, e.Variant, e.Err)
}

func (e *StrategyExecutionError) Unwrap() error {
	return e.Err
}

// ToolMissingError is the execution failure reported when an external binary
// cannot be started at all. It is always wrapped in a StrategyExecutionError.
type ToolMissingError struct {
	Tool string
	Err  error
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s is not installed or not on PATH: %v", e.Tool, e.Err)
}

func (e *ToolMissingError) Unwrap() error {
	return e.Err
}

// NoTextLayerError is reported by the structured strategy when the document has
// no readable page/text-object structure.
type NoTextLayerError struct {
	Reason string
	Err    error
}

func (e *NoTextLayerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no text layer: %s: %v", e.Reason, e.Err)
	}
	return "no text layer: " + e.Reason
}

func (e *NoTextLayerError) Unwrap() error {
	return e.Err
}

// NoExtractableTextError is the terminal failure when every strategy was
// exhausted without a candidate that clears the acceptance rule.
type NoExtractableTextError struct {
	Attempts  []Attempt
	BestScore float64
	Hint      string
}

func (e *NoExtractableTextError) Error() string {
	return "pdftext: no extractable text (" + summarizeAttempts(e.Attempts) + ")"
}

// KindOf classifies err for the attempt log.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		missing *ToolMissingError
		timeout *StrategyTimeoutError
		noLayer *NoTextLayerError
	)
	switch {
	case errors.As(err, &missing):
		return KindToolMissing
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.Is(err, ErrDeadlineExceeded):
		return KindDeadline
	case errors.As(err, &noLayer):
		return KindNoTextLayer
	case errors.Is(err, ErrNoFragments):
		return KindNoFragments
	case errors.Is(err, ErrEmptyOutput):
		return KindEmptyOutput
	default:
		return KindExecution
	}
}

func summarizeAttempts(attempts []Attempt) string {
	if len(attempts) == 0 {
		return "no strategies attempted"
	}
	parts := make([]string, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		status := "ok"
		if !a.Succeeded {
			status = string(a.Kind())
		}
		parts = append(parts, fmt.Sprintf("%s/%s: %s", a.Strategy, a.Variant, status))
	}
	return strings.Join(parts, "; ")
}
