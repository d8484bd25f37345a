package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/history"
)

type historyProvider interface {
	History(ctx context.Context, p models.Principal, userID string) ([]history.Record, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL            time.Duration
	Bands               emotion.Bands
	Location            *time.Location
	DefaultPeriod       history.Period
	MovingAverageWindow int
	RecentLimit         int
}

// DashboardService orchestrates composition of dashboard payloads.
type DashboardService struct {
	history historyProvider
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	History historyProvider
	Cache   *CacheService
	Logger  *zap.Logger
	Config  DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = emotion.FiveLevelBands
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if !cfg.DefaultPeriod.Valid() || cfg.DefaultPeriod == history.PeriodCustom {
		cfg.DefaultPeriod = history.DefaultPeriod
	}
	if cfg.MovingAverageWindow <= 0 {
		cfg.MovingAverageWindow = 3
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 6
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		history: params.History,
		cache:   params.Cache,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Home returns the home dashboard of userID and indicates cache utilisation.
func (s *DashboardService) Home(ctx context.Context, p models.Principal, userID string, q dto.PeriodQuery) (*dto.HomeDashboardResponse, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	now := s.now()
	window, err := s.resolveWindow(q, now)
	if err != nil {
		return nil, false, err
	}

	cacheKey := DashboardCacheKey(userID, windowCacheParts(window)...)
	var cached dto.HomeDashboardResponse
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	records, err := s.history.History(ctx, p, userID)
	if err != nil {
		return nil, false, err
	}
	summary := s.composeHome(userID, records, window, now)
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Bars returns only the bar series for the requested window.
func (s *DashboardService) Bars(ctx context.Context, p models.Principal, userID string, q dto.PeriodQuery) (*dto.BarChart, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	window, err := s.resolveWindow(q, s.now())
	if err != nil {
		return nil, false, err
	}

	cacheKey := BarsCacheKey(userID, windowCacheParts(window)...)
	var cached dto.BarChart
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	records, err := s.history.History(ctx, p, userID)
	if err != nil {
		return nil, false, err
	}
	bars := barChart(history.BuildBarSeries(records, window))
	s.persistCache(ctx, cacheKey, bars)
	return &bars, false, nil
}

func (s *DashboardService) resolveWindow(q dto.PeriodQuery, now time.Time) (history.Window, error) {
	period := history.Period(q.Period)
	if period == "" {
		period = s.cfg.DefaultPeriod
	}
	var start, end time.Time
	if period == history.PeriodCustom {
		var err error
		if start, err = parseDay(q.Start, s.cfg.Location); err != nil {
			return history.Window{}, appErrors.Clone(appErrors.ErrInvalidPeriod, "start must be a YYYY-MM-DD date")
		}
		if end, err = parseDay(q.End, s.cfg.Location); err != nil {
			return history.Window{}, appErrors.Clone(appErrors.ErrInvalidPeriod, "end must be a YYYY-MM-DD date")
		}
	}
	return history.ResolveWindow(period, now, start, end, s.cfg.Location)
}

// tryCache treats cache errors as a miss.
func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	return err == nil && hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) composeHome(userID string, records []history.Record, window history.Window, now time.Time) *dto.HomeDashboardResponse {
	records = history.SortByCreatedAt(records)
	raws := history.RawScores(records)
	return &dto.HomeDashboardResponse{
		UserID:      userID,
		HasData:     len(records) > 0,
		Totals:      totals(records),
		Recent:      s.recent(records, now),
		Line:        s.lineChart(records),
		Gauge:       s.gauge(history.Mean(raws)),
		Trends:      trends(history.ComputeTrendDeltas(raws)),
		TopEmotion:  topEmotion(history.TopEmotionWithTiebreak(records)),
		Bars:        barChart(history.BuildBarSeries(records, window)),
		GeneratedAt: now.UTC(),
	}
}

func (s *DashboardService) recent(records []history.Record, now time.Time) []dto.RecentPresentation {
	latest := history.Recent(records, s.cfg.RecentLimit)
	out := make([]dto.RecentPresentation, 0, len(latest))
	for _, rec := range latest {
		key := rec.Dominant()
		out = append(out, dto.RecentPresentation{
			ID:              rec.ID,
			Title:           rec.Filename,
			DominantEmotion: string(key),
			EmotionLabel:    key.Label(),
			EmotionColor:    key.Color(),
			Confidence:      rec.Confidence,
			CreatedAt:       rec.CreatedAt,
			TimeAgo:         history.TimeAgo(rec.CreatedAt, now),
		})
	}
	return out
}

func (s *DashboardService) lineChart(records []history.Record) dto.LineChart {
	series := history.BuildLineSeries(records, history.LineOptions{
		Location:            s.cfg.Location,
		MovingAverageWindow: s.cfg.MovingAverageWindow,
	})
	return dto.LineChart{
		Labels:        series.Labels(),
		Scores:        series.Scores(),
		MovingAverage: series.MovingAverage,
		Average:       series.Average,
		Best:          series.Best,
	}
}

// gauge places the unrounded average raw score on the band table. The colour
// follows the band of the percentage; the level name follows LevelIndex.
func (s *DashboardService) gauge(avgRaw float64) dto.Gauge {
	pct := emotion.Percentage(avgRaw)
	clamped := clampPercent(pct)
	colour, named := placeOnBands(s.cfg.Bands, avgRaw)
	index := emotion.LevelIndex(avgRaw)

	segments := make([]dto.GaugeSegment, 0, len(s.cfg.Bands))
	for i, band := range s.cfg.Bands {
		segments = append(segments, dto.GaugeSegment{
			Index:   band.Index,
			Key:     band.Key,
			Name:    band.Name,
			Min:     band.Min,
			Max:     band.Max,
			Width:   band.Width(),
			Color:   band.Color,
			Pale:    band.Pale,
			Tooltip: emotion.SegmentLabel(i),
		})
	}

	within := emotion.WithinLevelPct(avgRaw)
	return dto.Gauge{
		AverageRaw:     avgRaw,
		Percent:        pct,
		LevelIndex:     index,
		LevelName:      named.Name,
		Color:          colour.Color,
		Pale:           colour.Pale,
		Description:    named.Description,
		Advice:         named.Advice,
		WithinLevelPct: within,
		ToNextPct:      100 - within,
		BetweenLabel:   emotion.BetweenLabel(avgRaw),
		Segments:       segments,
		Progress:       []float64{clamped, 100 - clamped},
	}
}

// placeOnBands returns the band coloured by the percentage of raw and the
// band that names it. Five-band tables are named by level index; any other
// table is named by the colour band.
func placeOnBands(bands emotion.Bands, raw float64) (colour, named emotion.Band) {
	colour = bands.ForPercent(clampPercent(emotion.Percentage(raw)))
	if len(bands) != emotion.MaxLevel {
		return colour, colour
	}
	named, ok := bands.ByIndex(emotion.LevelIndex(raw))
	if !ok {
		named = colour
	}
	return colour, named
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func totals(records []history.Record) dto.DashboardTotals {
	out := dto.DashboardTotals{Presentations: len(records)}
	for _, rec := range records {
		if len(rec.Distribution) > 0 {
			out.WithDistribution++
		}
	}
	if n := len(records); n > 0 {
		last := records[n-1].CreatedAt
		out.LastPresentationAt = &last
	}
	return out
}

func trends(t history.Trend) dto.Trends {
	return dto.Trends{
		TotalDeltaPct:     t.TotalDeltaPct,
		TotalDeltaLevels:  t.TotalDeltaLevels,
		RecentDeltaPct:    t.RecentDeltaPct,
		RecentDeltaLevels: t.RecentDeltaLevels,
	}
}

func topEmotion(top history.TopEmotion) dto.TopEmotion {
	out := dto.TopEmotion{
		Key:      string(top.Key),
		Label:    top.Label,
		Count:    top.Count,
		Total:    top.Total,
		Tie:      top.Tie,
		TiedWith: top.TiedWith,
		Tiebreak: string(top.Tiebreak),
		Note:     top.Note,
	}
	if top.Key != "" {
		out.Color = top.Key.Color()
	}
	if out.TiedWith == nil {
		out.TiedWith = []string{}
	}
	return out
}

func barChart(series history.BarSeries) dto.BarChart {
	keys := make([]string, 0, len(series.Buckets))
	for _, b := range series.Buckets {
		keys = append(keys, b.Key)
	}
	return dto.BarChart{
		Period:      string(series.Window.Period),
		Granularity: string(series.Window.Granularity),
		Start:       series.Window.Start,
		End:         series.Window.End,
		Keys:        keys,
		Labels:      series.Labels(),
		Counts:      series.Counts(),
		Total:       series.Total,
	}
}

func windowCacheParts(w history.Window) []string {
	return []string{string(w.Period), w.Start.Format("20060102"), w.End.Format("20060102")}
}

func parseDay(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(history.DateLayout, raw, loc)
}
