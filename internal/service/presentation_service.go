package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/history"
)

type presentationSource interface {
	ListSummaries(ctx context.Context, token, userID string) ([]models.Presentation, error)
	GetDetail(ctx context.Context, token, id string) (*models.PresentationDetail, error)
	GetFeedback(ctx context.Context, token, id string) (*models.Feedback, error)
	GetAudioURL(ctx context.Context, token, id string) (*models.AudioURL, error)
	Upload(ctx context.Context, token, filename string, audio io.Reader) (*models.UploadResult, error)
}

type snapshotStore interface {
	GetMany(ctx context.Context, userID string, ids []string) (map[string]models.PresentationSnapshot, error)
	Upsert(ctx context.Context, snap models.PresentationSnapshot) error
}

type favoriteStore interface {
	Add(ctx context.Context, userID, presentationID string) error
	Remove(ctx context.Context, userID, presentationID string) error
	ListIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

type presentationObserver interface {
	ObserveHistorySize(n int)
	ObserveDBQuery(label string, duration time.Duration)
}

var allowedAudioExtensions = map[string]struct{}{
	".wav": {}, ".mp3": {}, ".m4a": {}, ".ogg": {}, ".webm": {}, ".flac": {},
}

// PresentationServiceConfig tunes history loading.
type PresentationServiceConfig struct {
	FetchConcurrency int
	SummariesTTL     time.Duration
	MaxUploadBytes   int64
	Location         *time.Location
	DefaultPageSize  int
}

// PresentationServiceParams groups constructor dependencies.
type PresentationServiceParams struct {
	Source    presentationSource
	Snapshots snapshotStore
	Favorites favoriteStore
	Cache     *CacheService
	Metrics   presentationObserver
	Logger    *zap.Logger
	Config    PresentationServiceConfig
}

// PresentationService loads presentation histories from the analysis backend
// and shapes them for the list, audio and upload screens.
type PresentationService struct {
	source    presentationSource
	snapshots snapshotStore
	favorites favoriteStore
	cache     *CacheService
	metrics   presentationObserver
	logger    *zap.Logger
	now       func() time.Time
	cfg       PresentationServiceConfig
}

// NewPresentationService constructs a PresentationService with sane defaults.
func NewPresentationService(params PresentationServiceParams) *PresentationService {
	cfg := params.Config
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 8
	}
	if cfg.SummariesTTL <= 0 {
		cfg.SummariesTTL = time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 25 << 20
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresentationService{
		source:    params.Source,
		snapshots: params.Snapshots,
		favorites: params.Favorites,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// History returns every presentation of userID as aggregator records, oldest
// first. Details are fetched concurrently; a presentation whose detail is
// gone upstream is kept with its dominant emotion only.
func (s *PresentationService) History(ctx context.Context, p models.Principal, userID string) ([]history.Record, error) {
	summaries, err := s.summaries(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, p, userID, summaries)
	if err != nil {
		return nil, err
	}
	records := make([]history.Record, 0, len(summaries))
	for _, summary := range summaries {
		records = append(records, summary.Record(details[summary.ID]))
	}
	if s.metrics != nil {
		s.metrics.ObserveHistorySize(len(records))
	}
	return history.SortByCreatedAt(records), nil
}

// Detail returns one presentation detail, preferring the snapshot store.
func (s *PresentationService) Detail(ctx context.Context, p models.Principal, userID, id string) (*models.PresentationDetail, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "presentation id is required")
	}
	if snap, ok := s.lookupSnapshots(ctx, userID, []string{id})[id]; ok {
		detail := snap.Detail()
		return &detail, nil
	}
	detail, err := s.source.GetDetail(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}
	s.storeSnapshots(ctx, userID, []*models.PresentationDetail{detail})
	return detail, nil
}

// Feedback returns the backend's textual feedback, or nil when there is none.
func (s *PresentationService) Feedback(ctx context.Context, p models.Principal, id string) (*models.Feedback, error) {
	return s.source.GetFeedback(ctx, p.Token, id)
}

// List returns one page of the history, newest first.
func (s *PresentationService) List(ctx context.Context, p models.Principal, userID string, q dto.HistoryQuery) ([]dto.PresentationItem, *models.Pagination, error) {
	if q.Emotion != "" && !emotion.Key(strings.ToLower(q.Emotion)).Known() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown emotion filter")
	}
	summaries, err := s.summaries(ctx, p, userID)
	if err != nil {
		return nil, nil, err
	}
	favorites, err := s.favoriteIDs(ctx, userID, q.Favorites)
	if err != nil {
		return nil, nil, err
	}

	sorted := make([]models.Presentation, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})

	now := s.now()
	items := make([]dto.PresentationItem, 0, len(sorted))
	for _, summary := range sorted {
		key := emotion.Normalize(summary.DominantEmotion)
		if q.Emotion != "" && string(key) != strings.ToLower(q.Emotion) {
			continue
		}
		_, fav := favorites[summary.ID]
		if q.Favorites && !fav {
			continue
		}
		item := s.item(summary, now)
		item.Favorite = fav
		items = append(items, item)
	}

	size := q.Limit
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	page := models.NewPagination(q.Page, size, len(items))
	from := page.Offset()
	if from > len(items) {
		from = len(items)
	}
	to := from + page.PageSize
	if to > len(items) {
		to = len(items)
	}
	return items[from:to], page, nil
}

// AudioURL returns the signed recording link together with the transcript.
func (s *PresentationService) AudioURL(ctx context.Context, p models.Principal, userID, id string) (*dto.AudioResponse, error) {
	detail, err := s.Detail(ctx, p, userID, id)
	if err != nil {
		return nil, err
	}
	audio, err := s.source.GetAudioURL(ctx, p.Token, id)
	if err != nil {
		return nil, err
	}
	return &dto.AudioResponse{
		PresentationID:  id,
		Filename:        detail.Filename,
		URL:             audio.URL,
		ExpiresAt:       audio.ExpiresAt,
		Transcript:      detail.Transcript,
		DurationSeconds: detail.Metadata.Duration,
		Language:        detail.Metadata.Language,
	}, nil
}

// Upload validates and forwards an audio file, then drops the caller's
// cached views so the next dashboard read includes it.
func (s *PresentationService) Upload(ctx context.Context, p models.Principal, filename string, size int64, audio io.Reader) (*dto.UploadResponse, error) {
	if filename == "" || audio == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audio file is required")
	}
	if size > s.cfg.MaxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audio file is too large")
	}
	if _, ok := allowedAudioExtensions[strings.ToLower(filepath.Ext(filename))]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported audio format")
	}

	result, err := s.source.Upload(ctx, p.Token, filepath.Base(filename), io.LimitReader(audio, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, p.UserID); err != nil {
			s.logger.Warn("cache invalidation after upload failed", zap.String("user_id", p.UserID), zap.Error(err))
		}
	}

	resp := &dto.UploadResponse{Success: result.Success, Message: result.Message}
	if result.Presentation != nil {
		item := s.item(*result.Presentation, s.now())
		resp.Presentation = &item
	}
	if result.AnalysisData != nil {
		resp.Dominant = string(emotion.Normalize(result.AnalysisData.DominantEmotion))
		resp.Confidence = result.AnalysisData.Confidence
	}
	s.logger.Info("presentation uploaded", zap.String("user_id", p.UserID), zap.Bool("success", result.Success))
	return resp, nil
}

// SetFavorite marks or unmarks a presentation.
func (s *PresentationService) SetFavorite(ctx context.Context, userID, id string, favorite bool) (*dto.FavoriteResponse, error) {
	if s.favorites == nil {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "favorites are not enabled")
	}
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "presentation id is required")
	}
	var err error
	if favorite {
		err = s.favorites.Add(ctx, userID, id)
	} else {
		err = s.favorites.Remove(ctx, userID, id)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update favorite")
	}
	return &dto.FavoriteResponse{PresentationID: id, Favorite: favorite}, nil
}

func (s *PresentationService) item(p models.Presentation, now time.Time) dto.PresentationItem {
	key := emotion.Normalize(p.DominantEmotion)
	created := p.CreatedAt.Time
	return dto.PresentationItem{
		ID:              p.ID,
		Filename:        p.Filename,
		DominantEmotion: string(key),
		EmotionLabel:    key.Label(),
		EmotionColor:    key.Color(),
		Confidence:      p.Confidence,
		ConfidenceStars: emotion.ConfidenceStars(p.Confidence),
		CreatedAt:       created,
		DateLabel:       history.ShortDate(created.In(s.cfg.Location)),
		TimeAgo:         history.TimeAgo(created, now),
	}
}

func (s *PresentationService) summaries(ctx context.Context, p models.Principal, userID string) ([]models.Presentation, error) {
	key := SummariesCacheKey(userID)
	if s.cache != nil {
		var cached []models.Presentation
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	target := userID
	if target == p.UserID {
		target = ""
	}
	summaries, err := s.source.ListSummaries(ctx, p.Token, target)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, summaries, s.cfg.SummariesTTL)
	}
	return summaries, nil
}

// details resolves the detail of every summary, snapshot store first. The
// returned map has no entry for presentations without a detail.
func (s *PresentationService) details(ctx context.Context, p models.Principal, userID string, summaries []models.Presentation) (map[string]*models.PresentationDetail, error) {
	out := make(map[string]*models.PresentationDetail, len(summaries))
	if len(summaries) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		ids = append(ids, summary.ID)
	}

	missing := make([]string, 0, len(ids))
	snaps := s.lookupSnapshots(ctx, userID, ids)
	for _, id := range ids {
		if snap, ok := snaps[id]; ok {
			detail := snap.Detail()
			out[id] = &detail
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.fetchDetails(ctx, p.Token, missing)
	if err != nil {
		return nil, err
	}
	stored := make([]*models.PresentationDetail, 0, len(fetched))
	for id, detail := range fetched {
		out[id] = detail
		stored = append(stored, detail)
	}
	s.storeSnapshots(ctx, userID, stored)
	return out, nil
}

// fetchDetails fans out detail requests with bounded concurrency. A 404
// leaves the id out of the result; any other failure cancels the batch.
func (s *PresentationService) fetchDetails(ctx context.Context, token string, ids []string) (map[string]*models.PresentationDetail, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		sem      = make(chan struct{}, s.cfg.FetchConcurrency)
		out      = make(map[string]*models.PresentationDetail, len(ids))
	)

	for _, id := range ids {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			detail, err := s.source.GetDetail(ctx, token, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out[id] = detail
			case isNotFound(err):
				s.logger.Debug("presentation detail missing upstream", zap.String("presentation_id", id))
			case firstErr == nil:
				firstErr = err
				cancel()
			}
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	return out, nil
}

func (s *PresentationService) lookupSnapshots(ctx context.Context, userID string, ids []string) map[string]models.PresentationSnapshot {
	if s.snapshots == nil || userID == "" {
		return nil
	}
	start := time.Now()
	snaps, err := s.snapshots.GetMany(ctx, userID, ids)
	s.observeQuery("snapshots_get_many", start)
	if err != nil {
		s.logger.Warn("snapshot lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return snaps
}

func (s *PresentationService) storeSnapshots(ctx context.Context, userID string, details []*models.PresentationDetail) {
	if s.snapshots == nil || userID == "" {
		return
	}
	for _, detail := range details {
		// An analysis without probabilities may still be in progress.
		if detail == nil || len(detail.EmotionProbabilities) == 0 {
			continue
		}
		start := time.Now()
		err := s.snapshots.Upsert(ctx, models.SnapshotFromDetail(userID, *detail))
		s.observeQuery("snapshots_upsert", start)
		if err != nil {
			s.logger.Warn("snapshot store failed", zap.String("presentation_id", detail.ID), zap.Error(err))
		}
	}
}

func (s *PresentationService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *PresentationService) favoriteIDs(ctx context.Context, userID string, required bool) (map[string]struct{}, error) {
	if s.favorites == nil {
		if required {
			return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "favorites are not enabled")
		}
		return map[string]struct{}{}, nil
	}
	ids, err := s.favorites.ListIDs(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load favorites")
	}
	return ids, nil
}

func isNotFound(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code
}
