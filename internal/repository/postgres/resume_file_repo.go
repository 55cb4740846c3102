package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

type resumeFileRepo struct {
	db *sqlx.DB
}

// NewResumeFileRepo creates a new PostgreSQL-backed ResumeFileRepository.
func NewResumeFileRepo(db *sqlx.DB) port.ResumeFileRepository {
	return &resumeFileRepo{db: db}
}

func (r *resumeFileRepo) Create(ctx context.Context, file *domain.ResumeFile) error {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `INSERT INTO resume_files
		(id, uploaded_by, original_name, file_size, s3_bucket, s3_key,
		 content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.UploadedBy, file.OriginalName, file.FileSize, file.S3Bucket,
		file.S3Key, file.ContentType, file.Status, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("resumeFileRepo.Create: %w", err)
	}
	return nil
}

func (r *resumeFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeFile, error) {
	var file domain.ResumeFile
	err := r.db.GetContext(ctx, &file, "SELECT * FROM resume_files WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resumeFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *resumeFileRepo) ListByUploader(ctx context.Context, uploadedBy string, offset, limit int) ([]domain.ResumeFile, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM resume_files WHERE uploaded_by = $1", uploadedBy)
	if err != nil {
		return nil, 0, fmt.Errorf("resumeFileRepo.ListByUploader count: %w", err)
	}

	var files []domain.ResumeFile
	err = r.db.SelectContext(ctx, &files,
		`SELECT * FROM resume_files WHERE uploaded_by = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		uploadedBy, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("resumeFileRepo.ListByUploader: %w", err)
	}
	return files, total, nil
}

func (r *resumeFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE resume_files SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("resumeFileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
