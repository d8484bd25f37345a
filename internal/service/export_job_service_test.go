package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/internal/repository"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/jobs"
)

type fakeExportJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.ExportJob
	seq  int
}

func newFakeExportJobs() *fakeExportJobs {
	return &fakeExportJobs{jobs: map[string]*models.ExportJob{}}
}

func (f *fakeExportJobs) Create(_ context.Context, job *models.ExportJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", f.seq)
	}
	clone := *job
	f.jobs[job.ID] = &clone
	return nil
}

func (f *fakeExportJobs) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get export job: %w", sql.ErrNoRows)
	}
	clone := *job
	return &clone, nil
}

func (f *fakeExportJobs) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		at := *params.FinishedAt
		job.FinishedAt = &at
	}
	return nil
}

func (f *fakeExportJobs) ListQueued(context.Context, int) ([]models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ExportJob
	for _, job := range f.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeExportJobs) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ExportJob
	for _, job := range f.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeExportJobs) get(id string) models.ExportJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.jobs[id]
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type stubGenerator struct {
	err    error
	tokens []string
}

func (g *stubGenerator) Generate(_ context.Context, job *models.ExportJob, token string) (*ExportResult, error) {
	g.tokens = append(g.tokens, token)
	if g.err != nil {
		return nil, g.err
	}
	return &ExportResult{URL: "/api/v1/export/signed-" + job.ID, Rows: 3}, nil
}

type exportFixture struct {
	repo    *fakeExportJobs
	queue   *recordingQueue
	files   *ExportService
	service *ExportJobService
}

func newExportFixture(t *testing.T) exportFixture {
	t.Helper()
	repo := newFakeExportJobs()
	queue := &recordingQueue{}
	files := newExportServiceForTest(t, &fakeHistory{records: sampleRecords()}, nil)
	svc := NewExportJobService(repo, queue, files, nil, zap.NewNop(), ExportJobServiceConfig{ResultTTL: time.Hour})
	svc.now = func() time.Time { return dashboardNow }
	return exportFixture{repo: repo, queue: queue, files: files, service: svc}
}

func assertAppCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
}

func TestExportJobCreateEnqueuesWithToken(t *testing.T) {
	fx := newExportFixture(t)
	p := models.Principal{UserID: "u1", Role: models.RoleStudent, Token: "bearer-1"}

	resp, err := fx.service.CreateJob(context.Background(), p, dto.ExportRequest{
		Format:  "CSV",
		Period:  "custom",
		Start:   "2025-09-01",
		End:     "2025-09-05",
		Emotion: "Confiada",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, resp.ID, fx.queue.jobs[0].ID)
	assert.Equal(t, "csv", fx.queue.jobs[0].Type)
	assert.Equal(t, "bearer-1", fx.queue.jobs[0].Payload)

	stored := fx.repo.get(resp.ID)
	assert.Equal(t, "u1", stored.CreatedBy)
	assert.Equal(t, "u1", stored.Params.UserID)
	assert.Equal(t, "confiada", stored.Params.Emotion)
	require.NotNil(t, stored.Params.Start)
	assert.Equal(t, "2025-09-05", stored.Params.End.Format("2006-01-02"))
	assert.Empty(t, stored.Params.AccessToken)
}

func TestExportJobCreateValidation(t *testing.T) {
	fx := newExportFixture(t)
	ctx := context.Background()
	student := models.Principal{UserID: "u1", Role: models.RoleStudent}

	_, err := fx.service.CreateJob(ctx, student, dto.ExportRequest{Format: "docx"})
	assertAppCode(t, err, appErrors.ErrValidation)

	_, err = fx.service.CreateJob(ctx, student, dto.ExportRequest{Format: "csv", Emotion: "feliz"})
	assertAppCode(t, err, appErrors.ErrValidation)

	_, err = fx.service.CreateJob(ctx, student, dto.ExportRequest{Format: "csv", Period: "custom", Start: "2025-09-01"})
	assertAppCode(t, err, appErrors.ErrInvalidPeriod)

	_, err = fx.service.CreateJob(ctx, student, dto.ExportRequest{Format: "csv", UserID: "u2"})
	assertAppCode(t, err, appErrors.ErrForbidden)

	coach := models.Principal{UserID: "c1", Role: models.RoleCoach}
	resp, err := fx.service.CreateJob(ctx, coach, dto.ExportRequest{Format: "pdf", UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "u2", fx.repo.get(resp.ID).Params.UserID)
	assert.Len(t, fx.queue.jobs, 1)
}

func TestExportJobCreateMarksFailedWhenQueueRejects(t *testing.T) {
	fx := newExportFixture(t)
	fx.queue.err = errors.New("queue full")

	_, err := fx.service.CreateJob(context.Background(), models.Principal{UserID: "u1"}, dto.ExportRequest{Format: "csv"})
	assertAppCode(t, err, appErrors.ErrInternal)

	require.Len(t, fx.repo.jobs, 1)
	for id := range fx.repo.jobs {
		job := fx.repo.get(id)
		assert.Equal(t, models.ExportStatusFailed, job.Status)
		assert.Equal(t, 100, job.Progress)
		require.NotNil(t, job.FinishedAt)
	}
}

func TestExportJobStatusAccess(t *testing.T) {
	fx := newExportFixture(t)
	ctx := context.Background()
	owner := models.Principal{UserID: "u1", Role: models.RoleStudent}
	resp, err := fx.service.CreateJob(ctx, owner, dto.ExportRequest{Format: "xlsx"})
	require.NoError(t, err)

	status, err := fx.service.GetStatus(ctx, owner, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatXLSX, status.Format)
	assert.Nil(t, status.Error)

	_, err = fx.service.GetStatus(ctx, models.Principal{UserID: "u2", Role: models.RoleCoach}, resp.ID)
	assertAppCode(t, err, appErrors.ErrForbidden)

	_, err = fx.service.GetStatus(ctx, models.Principal{UserID: "a1", Role: models.RoleAdmin}, resp.ID)
	require.NoError(t, err)

	_, err = fx.service.GetStatus(ctx, owner, "missing")
	assertAppCode(t, err, appErrors.ErrNotFound)
}

func TestExportWorkerLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeExportJobs()
		require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "j1", Format: models.ExportFormatCSV, Status: models.ExportStatusQueued}))
		gen := &stubGenerator{}
		worker := NewExportWorker(repo, gen, 2, nil)

		require.NoError(t, worker.Handle(ctx, jobs.Job{ID: "j1", Payload: "bearer"}))
		job := repo.get("j1")
		assert.Equal(t, models.ExportStatusFinished, job.Status)
		assert.Equal(t, 100, job.Progress)
		require.NotNil(t, job.ResultURL)
		assert.Equal(t, "/api/v1/export/signed-j1", *job.ResultURL)
		assert.Equal(t, []string{"bearer"}, gen.tokens)
	})

	t.Run("retry then fail", func(t *testing.T) {
		repo := newFakeExportJobs()
		require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "j2", Format: models.ExportFormatPDF, Status: models.ExportStatusQueued}))
		worker := NewExportWorker(repo, &stubGenerator{err: errors.New("backend down")}, 2, nil)

		require.Error(t, worker.Handle(ctx, jobs.Job{ID: "j2", Attempt: 0}))
		job := repo.get("j2")
		assert.Equal(t, models.ExportStatusQueued, job.Status)
		assert.Zero(t, job.Progress)
		require.NotNil(t, job.ErrorMessage)
		assert.Equal(t, "backend down", *job.ErrorMessage)

		require.Error(t, worker.Handle(ctx, jobs.Job{ID: "j2", Attempt: 2}))
		job = repo.get("j2")
		assert.Equal(t, models.ExportStatusFailed, job.Status)
		assert.Equal(t, 100, job.Progress)
		assert.NotNil(t, job.FinishedAt)
	})

	t.Run("settled job is skipped", func(t *testing.T) {
		repo := newFakeExportJobs()
		require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "j3", Format: models.ExportFormatCSV, Status: models.ExportStatusFailed}))
		gen := &stubGenerator{}
		worker := NewExportWorker(repo, gen, 2, nil)

		require.NoError(t, worker.Handle(ctx, jobs.Job{ID: "j3", Payload: "bearer"}))
		assert.Equal(t, models.ExportStatusFailed, repo.get("j3").Status)
		assert.Empty(t, gen.tokens)
	})

	t.Run("unknown job", func(t *testing.T) {
		worker := NewExportWorker(newFakeExportJobs(), &stubGenerator{}, 1, nil)
		require.Error(t, worker.Handle(ctx, jobs.Job{ID: "nope"}))
	})
}

func TestExportJobResolveDownload(t *testing.T) {
	fx := newExportFixture(t)
	ctx := context.Background()
	job := &models.ExportJob{ID: "dl-1", Format: models.ExportFormatCSV, Params: models.ExportJobParams{UserID: "u1"}, CreatedBy: "u1"}
	require.NoError(t, fx.repo.Create(ctx, job))

	result, err := fx.files.Generate(ctx, job, "bearer")
	require.NoError(t, err)

	_, err = fx.service.ResolveDownload(ctx, result.Token)
	assertAppCode(t, err, appErrors.ErrForbidden)

	finished := models.ExportStatusFinished
	require.NoError(t, fx.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &finished, ResultURL: &result.URL}))

	download, err := fx.service.ResolveDownload(ctx, result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, result.RelativePath, download.Filename)
	assert.Equal(t, models.ExportFormatCSV, download.Format)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cierre.wav")

	_, err = fx.service.ResolveDownload(ctx, "garbage")
	assertAppCode(t, err, appErrors.ErrForbidden)

	require.NoError(t, fx.files.Delete(result.RelativePath))
	_, err = fx.service.ResolveDownload(ctx, result.Token)
	assertAppCode(t, err, appErrors.ErrNotFound)
}

func TestExportJobRecoverFailsStaleJobs(t *testing.T) {
	fx := newExportFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.repo.Create(ctx, &models.ExportJob{ID: "q1", Status: models.ExportStatusQueued}))
	require.NoError(t, fx.repo.Create(ctx, &models.ExportJob{ID: "f1", Status: models.ExportStatusFinished}))

	assert.Equal(t, 1, fx.service.RecoverPendingJobs(ctx))
	job := fx.repo.get("q1")
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, recoveredJobMessage, *job.ErrorMessage)
	assert.Equal(t, models.ExportStatusFinished, fx.repo.get("f1").Status)
	assert.Empty(t, fx.queue.jobs)
}

func TestExportJobCleanupExpiresFiles(t *testing.T) {
	fx := newExportFixture(t)
	ctx := context.Background()
	job := &models.ExportJob{ID: "old-1", Format: models.ExportFormatCSV, Params: models.ExportJobParams{UserID: "u1"}}
	require.NoError(t, fx.repo.Create(ctx, job))
	result, err := fx.files.Generate(ctx, job, "")
	require.NoError(t, err)

	finished := models.ExportStatusFinished
	longAgo := dashboardNow.Add(-2 * time.Hour)
	require.NoError(t, fx.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:     &finished,
		ResultURL:  &result.URL,
		FinishedAt: &longAgo,
	}))

	fx.service.cleanupExpired(ctx)

	assert.Equal(t, models.ExportStatusExpired, fx.repo.get(job.ID).Status)
	_, err = fx.files.Open(result.RelativePath)
	assert.True(t, errors.Is(err, os.ErrNotExist), "file should be gone, got %v", err)
}
