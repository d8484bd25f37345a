package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/oratoria-api/internal/models"
)

const exportJobColumns = `id, format, params, status, progress, result_url, error_message, created_by, created_at, updated_at, finished_at`

// ExportJobRepository persists history export job metadata.
type ExportJobRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db, now: time.Now}
}

// Create inserts a new job row with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = r.now().UTC()
	}
	job.UpdatedAt = job.CreatedAt
	const query = `INSERT INTO export_jobs (` + exportJobColumns + `)
VALUES (:id, :format, :params, :status, :progress, :result_url, :error_message, :created_by, :created_at, :updated_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// UpdateExportJobParams defines the mutable fields.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes and bumps updated_at.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", r.now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE export_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs for cold start recovery.
func (r *ExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued export jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	return jobs, nil
}
