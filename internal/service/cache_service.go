package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Cache key layout. Every view cached for a user lives under "user:<id>:" so
// an upload can drop all of them with one pattern.
const (
	cacheScopeDashboard = "dashboard"
	cacheScopeBars      = "bars"
	cacheScopeFeedback  = "feedback"
	cacheScopeSummaries = "summaries"
)

// DashboardCacheKey identifies a home view for a user and window.
func DashboardCacheKey(userID string, parts ...string) string {
	return userCacheKey(userID, cacheScopeDashboard, parts...)
}

// BarsCacheKey identifies a bar series for a user and window.
func BarsCacheKey(userID string, parts ...string) string {
	return userCacheKey(userID, cacheScopeBars, parts...)
}

// FeedbackCacheKey identifies a feedback view.
func FeedbackCacheKey(userID, presentationID string) string {
	return userCacheKey(userID, cacheScopeFeedback, presentationID)
}

// SummariesCacheKey identifies the raw summary list of a user.
func SummariesCacheKey(userID string) string {
	return userCacheKey(userID, cacheScopeSummaries)
}

// UserCachePattern matches every cached view of a user. Glob metacharacters
// in the id are escaped so the pattern never reaches other users' keys.
func UserCachePattern(userID string) string {
	return fmt.Sprintf("user:%s:*", globEscaper.Replace(userID))
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func userCacheKey(userID, scope string, parts ...string) string {
	key := fmt.Sprintf("user:%s:%s", userID, scope)
	for _, part := range parts {
		if part == "" {
			part = "-"
		}
		key += ":" + strings.ReplaceAll(part, ":", "_")
	}
	return key
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(false, duration)
			}
			return false, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, duration)
		}
		if s.logger != nil {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false, err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(true, duration)
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// InvalidateUser drops every cached view of userID.
func (s *CacheService) InvalidateUser(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.Invalidate(ctx, UserCachePattern(userID))
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		if s.logger != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		}
		return err
	}
	return nil
}
