package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrMissingResumeRef    = errors.New("resume reference is required")
	ErrResumeNotFound      = errors.New("resume could not be located in storage")
	ErrInvalidPDF          = errors.New("file is not a valid PDF")
	ErrNoExtractableText   = errors.New("no extractable text in document")
	ErrEmptyBody           = errors.New("request body is empty")
	ErrAnalysisNotComplete = errors.New("analysis has not completed yet")
	ErrSummarizerFailed    = errors.New("summarization failed")
)
