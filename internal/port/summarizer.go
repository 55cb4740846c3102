package port

import "context"

// SummaryInput carries the resume text and the role it is assessed against.
// An empty Text is allowed; providers prompt with a placeholder instead.
type SummaryInput struct {
	Text string
	Role string
	// MaxChars caps the text sent to the provider. Zero uses the default.
	MaxChars int
}

// SummaryOutput is the candidate assessment produced by an LLM.
type SummaryOutput struct {
	Analysis  string
	ModelUsed string
}

// Summarizer abstracts LLM-based candidate assessment.
type Summarizer interface {
	Summarize(ctx context.Context, input SummaryInput) (*SummaryOutput, error)
}
