package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, a *domain.ResumeAnalysis) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if len(a.ExtractionLog) == 0 {
		a.ExtractionLog = []byte("[]")
	}

	query := `INSERT INTO resume_analyses
		(id, recruiter_id, candidate_id, resume_ref, object_key, role, profile_hint, status,
		 parse_success, strategy, variant, quality_score, text_length, extracted_text,
		 analysis, model_used, extraction_log, hint, error_message, retry_count,
		 completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.RecruiterID, a.CandidateID, a.ResumeRef, a.ObjectKey, a.Role, a.ProfileHint,
		a.Status, a.ParseSuccess, a.Strategy, a.Variant, a.QualityScore, a.TextLength,
		a.ExtractedText, a.Analysis, a.ModelUsed, a.ExtractionLog, a.Hint, a.ErrorMessage,
		a.RetryCount, a.CompletedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeAnalysis, error) {
	var a domain.ResumeAnalysis
	err := r.db.GetContext(ctx, &a, "SELECT * FROM resume_analyses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &a, nil
}

// filterClause renders filter as a WHERE clause with positional arguments.
func filterClause(filter port.AnalysisFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if filter.RecruiterID != "" {
		add("recruiter_id", filter.RecruiterID)
	}
	if filter.CandidateID != "" {
		add("candidate_id", filter.CandidateID)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *analysisRepo) List(ctx context.Context, filter port.AnalysisFilter, offset, limit int) ([]domain.ResumeAnalysis, int, error) {
	where, args := filterClause(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM resume_analyses"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT * FROM resume_analyses%s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	var out []domain.ResumeAnalysis
	if err := r.db.SelectContext(ctx, &out, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *analysisRepo) ListAll(ctx context.Context, filter port.AnalysisFilter) ([]domain.ResumeAnalysis, error) {
	where, args := filterClause(filter)

	var out []domain.ResumeAnalysis
	err := r.db.SelectContext(ctx, &out,
		"SELECT * FROM resume_analyses"+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListAll: %w", err)
	}
	return out, nil
}

func (r *analysisRepo) UpdateResult(ctx context.Context, a *domain.ResumeAnalysis) error {
	a.UpdatedAt = time.Now().UTC()
	if len(a.ExtractionLog) == 0 {
		a.ExtractionLog = []byte("[]")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE resume_analyses SET
			object_key = $1, status = $2, parse_success = $3, strategy = $4, variant = $5,
			quality_score = $6, text_length = $7, extracted_text = $8, analysis = $9,
			model_used = $10, extraction_log = $11, hint = $12, error_message = $13,
			completed_at = $14, updated_at = $15
		 WHERE id = $16`,
		a.ObjectKey, a.Status, a.ParseSuccess, a.Strategy, a.Variant,
		a.QualityScore, a.TextLength, a.ExtractedText, a.Analysis,
		a.ModelUsed, a.ExtractionLog, a.Hint, a.ErrorMessage,
		a.CompletedAt, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("analysisRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *analysisRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus, errMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resume_analyses SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		status, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("analysisRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *analysisRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ResumeAnalysis, error) {
	var out []domain.ResumeAnalysis
	err := r.db.SelectContext(ctx, &out,
		`UPDATE resume_analyses SET status = $1, retry_count = retry_count + 1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM resume_analyses
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.AnalysisStatusProcessing, time.Now().UTC(), domain.AnalysisStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ClaimQueued: %w", err)
	}
	return out, nil
}

func (r *analysisRepo) RequeueStale(ctx context.Context, olderThanSecs, maxRetries int) (int, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(olderThanSecs) * time.Second)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("analysisRepo.RequeueStale begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE resume_analyses SET status = $1, error_message = $2, updated_at = $3
		 WHERE status = $4 AND updated_at < $5 AND retry_count >= $6`,
		domain.AnalysisStatusFailed, "abandoned after repeated worker failures", time.Now().UTC(),
		domain.AnalysisStatusProcessing, cutoff, maxRetries); err != nil {
		return 0, fmt.Errorf("analysisRepo.RequeueStale fail: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE resume_analyses SET status = $1, updated_at = $2
		 WHERE status = $3 AND updated_at < $4 AND retry_count < $5`,
		domain.AnalysisStatusQueued, time.Now().UTC(),
		domain.AnalysisStatusProcessing, cutoff, maxRetries)
	if err != nil {
		return 0, fmt.Errorf("analysisRepo.RequeueStale requeue: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("analysisRepo.RequeueStale commit: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
