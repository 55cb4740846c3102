package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResumeFile stores metadata about an uploaded resume PDF.
type ResumeFile struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UploadedBy   string     `db:"uploaded_by" json:"uploaded_by"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ResumeAnalysis is one extraction plus summarization run for a candidate's resume.
type ResumeAnalysis struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	RecruiterID   string          `db:"recruiter_id" json:"recruiter_id"`
	CandidateID   string          `db:"candidate_id" json:"candidate_id"`
	ResumeRef     string          `db:"resume_ref" json:"resume_ref"`
	ObjectKey     string          `db:"object_key" json:"object_key"`
	Role          string          `db:"role" json:"role"`
	ProfileHint   string          `db:"profile_hint" json:"-"`
	Status        AnalysisStatus  `db:"status" json:"status"`
	ParseSuccess  bool            `db:"parse_success" json:"parse_success"`
	Strategy      string          `db:"strategy" json:"strategy"`
	Variant       string          `db:"variant" json:"variant"`
	QualityScore  float64         `db:"quality_score" json:"quality_score"`
	TextLength    int             `db:"text_length" json:"text_length"`
	ExtractedText string          `db:"extracted_text" json:"extracted_text"`
	Analysis      string          `db:"analysis" json:"analysis"`
	ModelUsed     string          `db:"model_used" json:"model_used"`
	ExtractionLog json.RawMessage `db:"extraction_log" json:"extraction_log"`
	Hint          string          `db:"hint" json:"hint,omitempty"`
	ErrorMessage  string          `db:"error_message" json:"error_message,omitempty"`
	RetryCount    int             `db:"retry_count" json:"retry_count"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ExtractionAttempt is the serialised form of one extraction attempt.
type ExtractionAttempt struct {
	Strategy  string  `json:"strategy"`
	Variant   string  `json:"variant"`
	Success   bool    `json:"success"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Error     string  `json:"error,omitempty"`
	Length    int     `json:"length"`
	Score     float64 `json:"score"`
	ElapsedMS int64   `json:"elapsed_ms"`
}

// LocateAttempt records one storage key tried while locating a resume.
type LocateAttempt struct {
	Key   string `json:"key"`
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}
