package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/internal/repository"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/history"
	"github.com/noah-isme/oratoria-api/pkg/jobs"
)

const recoveredJobMessage = "export interrupted by a restart, request it again"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob, token string) (*ExportResult, error)
}

type exportFiles interface {
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
	Exists(relPath string) bool
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

// ExportJobServiceConfig governs recovery and cleanup.
type ExportJobServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	Location        *time.Location
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportJobService manages the lifecycle of history export jobs.
type ExportJobService struct {
	repo      exportJobStore
	queue     jobDispatcher
	files     exportFiles
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       ExportJobServiceConfig
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, files exportFiles, validate *validator.Validate, logger *zap.Logger, cfg ExportJobServiceConfig) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportJobService{
		repo:      repo,
		queue:     queue,
		files:     files,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists the job and enqueues it. The
// caller's bearer token travels with the queued job only.
func (s *ExportJobService) CreateJob(ctx context.Context, p models.Principal, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	req.Format = models.ExportFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	req.Emotion = strings.ToLower(strings.TrimSpace(req.Emotion))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	target := req.UserID
	if target == "" {
		target = p.UserID
	}
	if target == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	if !p.CanAccess(target) {
		return nil, appErrors.ErrForbidden
	}

	params := models.ExportJobParams{
		UserID:    target,
		Period:    req.Period,
		Emotion:   req.Emotion,
		Favorites: req.Favorites,
	}
	if req.Period != "" {
		start, end, err := parseWindowDates(req.Start, req.End)
		if err != nil {
			return nil, err
		}
		if _, err := history.ResolveWindow(history.Period(req.Period), s.now(), derefTime(start), derefTime(end), s.cfg.Location); err != nil {
			return nil, err
		}
		params.Start, params.End = start, end
	}

	job := &models.ExportJob{
		Format:    req.Format,
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: p.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Format), Payload: p.Token}); err != nil {
		s.markFailed(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to its creator and to admins.
func (s *ExportJobService) GetStatus(ctx context.Context, p models.Principal, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != p.UserID && p.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ExportStatusResponse{
		ID:        job.ID,
		Format:    job.Format,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.files.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	if !s.files.Exists(relPath) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs fails jobs left queued by a previous process. Their
// bearer tokens lived in memory only, so they cannot be replayed.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) int {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to list queued export jobs", "error", err)
		return 0
	}
	for _, job := range pending {
		s.markFailed(ctx, job.ID, recoveredJobMessage)
	}
	if len(pending) > 0 {
		s.logger.Sugar().Infow("failed stale export jobs", "count", len(pending))
	}
	return len(pending)
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	expired := models.ExportStatusExpired
	for {
		batch, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(batch) == 0 {
			break
		}
		for _, job := range batch {
			if job.ResultURL != nil {
				if token := extractToken(*job.ResultURL); token != "" {
					if _, relPath, _, err := s.files.ParseToken(token, true); err == nil {
						if err := s.files.Delete(relPath); err != nil {
							s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
						}
					}
				}
			}
			if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &expired}); err != nil {
				s.logger.Sugar().Warnw("failed to mark job expired", "job_id", job.ID, "error", err)
				return
			}
		}
		if len(batch) < 100 {
			break
		}
	}
	if _, err := s.files.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ExportJobService) load(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

func (s *ExportJobService) markFailed(ctx context.Context, id, msg string) {
	status := models.ExportStatusFailed
	progress := 100
	now := s.now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Sugar().Warnw("failed to mark job failed", "job_id", id, "error", err)
	}
}

func parseWindowDates(rawStart, rawEnd string) (start, end *time.Time, err error) {
	parse := func(raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse(history.DateLayout, raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidPeriod, "dates must use YYYY-MM-DD")
		}
		return &t, nil
	}
	if start, err = parse(rawStart); err != nil {
		return nil, nil, err
	}
	if end, err = parse(rawEnd); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ExportWorker{
		repo:       repo,
		exporter:   exporter,
		logger:     logger,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Handle processes a queue job.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if record.Status.Terminal() {
		w.logger.Sugar().Infow("skipping settled export job", "job_id", job.ID, "status", record.Status)
		return nil
	}
	token, _ := job.Payload.(string)
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.exporter.Generate(ctx, record, token)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := w.now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}
	finished := models.ExportStatusFinished
	progress = 100
	now := w.now().UTC()
	url := result.URL
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	w.logger.Sugar().Infow("export finished", "job_id", job.ID, "format", record.Format, "rows", result.Rows)
	return nil
}
