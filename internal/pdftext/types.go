package pdftext

import (
	"time"
)

// Document is the captured input buffer. The bytes are copied on capture and
// never modified afterwards.
type Document struct {
	data               []byte
	DeclaredByteLength int
}

// NewDocument captures a private copy of data.
func NewDocument(data []byte) Document {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Document{data: cp, DeclaredByteLength: len(cp)}
}

// Bytes returns the captured buffer. Callers must treat it as read-only.
func (d Document) Bytes() []byte {
	return d.data
}

// SignatureCheckResult is the outcome of ValidateSignature.
type SignatureCheckResult struct {
	Valid        bool
	HeaderSample string
}

// Outcome is what a strategy reports for a single variant.
type Outcome struct {
	Variant string
	Text    string
	Err     error
	Elapsed time.Duration
}

// Attempt is one entry of the attempt log. The text itself is not kept in the
// log; only the best candidate text survives an extraction.
type Attempt struct {
	Strategy   string
	Variant    string
	Succeeded  bool
	TextLength int
	Score      float64
	Err        error
	Elapsed    time.Duration
}

// Kind classifies the attempt's failure, or KindNone for a success.
func (a *Attempt) Kind() ErrorKind {
	return KindOf(a.Err)
}

// ErrorMessage returns the failure message, or "" for a success.
func (a *Attempt) ErrorMessage() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// Candidate is a scored text produced by a successful attempt.
type Candidate struct {
	Text   string
	Score  float64
	Source Attempt
}

// Result is the terminal outcome of an extraction. It is owned by the caller;
// the extractor keeps no reference to it.
type Result struct {
	Text         string
	Succeeded    bool
	BestScore    float64
	Strategy     string
	Variant      string
	Attempts     []Attempt
	TotalElapsed time.Duration
	// Failure is a *NoExtractableTextError when Succeeded is false.
	Failure error
}

// Hint returns the remediation hint carried by a failed result.
func (r *Result) Hint() string {
	if nt, ok := r.Failure.(*NoExtractableTextError); ok {
		return nt.Hint
	}
	return ""
}
