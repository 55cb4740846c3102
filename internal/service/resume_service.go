package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentmatch/internal/config"
	"talentmatch/internal/domain"
	"talentmatch/internal/pdftext"
	"talentmatch/internal/port"
)

// ResumeUploadInput is the DTO for resume upload requests.
type ResumeUploadInput struct {
	UploadedBy string
	File       multipart.File
	Header     *multipart.FileHeader
}

// ResumeUploadOutput describes a stored resume.
type ResumeUploadOutput struct {
	File *domain.ResumeFile `json:"file"`
	Path string             `json:"path"`
	URL  string             `json:"url"`
}

// ResumeService defines the resume file contract.
type ResumeService interface {
	Upload(ctx context.Context, input ResumeUploadInput) (*ResumeUploadOutput, error)
	ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error)
}

type resumeService struct {
	fileRepo port.ResumeFileRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
	now      func() time.Time
}

// NewResumeService creates a new ResumeService implementation.
func NewResumeService(fileRepo port.ResumeFileRepository, storage port.ObjectStorage, cfg *config.S3Config) ResumeService {
	return &resumeService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ResumeKey builds the storage key for an uploaded resume.
func ResumeKey(uploadedBy string, at time.Time, id uuid.UUID) string {
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}
	return fmt.Sprintf("resumes/%s/%d-%s.pdf", uploadedBy, at.UnixMilli(), id)
}

func (s *resumeService) Upload(ctx context.Context, input ResumeUploadInput) (*ResumeUploadOutput, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB << 20
	if maxBytes > 0 && input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	var body io.Reader = input.File
	if maxBytes > 0 {
		body = io.LimitReader(input.File, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	if sig := pdftext.ValidateSignature(data); !sig.Valid {
		return nil, fmt.Errorf("%w: header %q", domain.ErrInvalidPDF, sig.HeaderSample)
	}
	contentType := http.DetectContentType(data)
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		contentType = "application/pdf"
	}

	id := uuid.New()
	key := ResumeKey(input.UploadedBy, s.now(), id)
	file := &domain.ResumeFile{
		ID:           id,
		UploadedBy:   input.UploadedBy,
		OriginalName: input.Header.Filename,
		FileSize:     int64(len(data)),
		S3Bucket:     s.cfg.Bucket,
		S3Key:        key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	slog.Info("resumeService.Upload: uploading resume",
		"file_id", id, "name", input.Header.Filename, "bytes", len(data), "uploaded_by", input.UploadedBy)

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("creating resume metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata:    map[string]string{"file-id": id.String(), "uploaded-by": input.UploadedBy},
	})
	if err != nil {
		slog.Error("resumeService.Upload: storage upload failed", "file_id", id, "error", err)
		_ = s.fileRepo.UpdateStatus(ctx, id, domain.FileStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, id, domain.FileStatusUploaded); err != nil {
		// An object without an uploaded row would never be listed.
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, key); delErr != nil {
			slog.Warn("resumeService.Upload: cleanup failed", "file_id", id, "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("updating resume status: %w", err)
	}
	file.Status = domain.FileStatusUploaded

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		// The object is stored; callers can still analyze it by path.
		slog.Warn("resumeService.Upload: presigning failed", "file_id", id, "error", err)
	}
	return &ResumeUploadOutput{File: file, Path: key, URL: url}, nil
}

func (s *resumeService) ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error) {
	return s.fileRepo.ListByUploader(ctx, uploadedBy, offset, limit)
}
