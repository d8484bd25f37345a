package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/dto"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/language"
)

type presentationReader interface {
	Detail(ctx context.Context, p models.Principal, userID, id string) (*models.PresentationDetail, error)
	Feedback(ctx context.Context, p models.Principal, id string) (*models.Feedback, error)
}

// Resource recommendation thresholds.
const (
	anxietyResourcePct     = 30
	fillerResourceCount    = 3
	shortSpeechResourceLen = 120
)

type resourceTopic struct {
	topic string
	title string
	slug  string
}

var (
	anxietyResource   = resourceTopic{"anxiety", "Técnicas de respiración para hablar en público", "respiracion-para-hablar-en-publico"}
	fillersResource   = resourceTopic{"fillers", "Cómo eliminar las muletillas", "como-eliminar-muletillas"}
	structureResource = resourceTopic{"structure", "Estructura de un discurso breve", "estructura-de-un-discurso"}
	practiceResource  = resourceTopic{"practice", "Práctica de grabación y autoevaluación", "grabarse-para-mejorar-oratoria"}

	emotionResources = map[emotion.Key]resourceTopic{
		emotion.Nerviosa:   {"nerves", "Manejo de nervios antes de presentar", "manejo-de-nervios-antes-de-presentar"},
		emotion.Ansiosa:    {"nerves", "Manejo de nervios antes de presentar", "manejo-de-nervios-antes-de-presentar"},
		emotion.Neutra:     {"voice", "Cómo dar energía y entonación a tu voz", "energia-y-entonacion-de-voz"},
		emotion.Confiada:   {"body", "Lenguaje corporal seguro", "lenguaje-corporal-al-presentar"},
		emotion.Motivada:   {"pace", "Controlar el ritmo al hablar", "ritmo-al-hablar-en-publico"},
		emotion.Entusiasta: {"story", "Storytelling para presentaciones", "storytelling-para-presentaciones"},
	}

	reflections = map[emotion.Key]string{
		emotion.Nerviosa:   "Identifica el momento de la presentación que te generó más tensión y ensaya solo esa parte hasta que se sienta natural.",
		emotion.Ansiosa:    "¿Qué pensamiento apareció justo antes de hablar? Escríbelo y prepara una frase de apertura que puedas decir de memoria.",
		emotion.Neutra:     "Tu tono fue estable. Elige la idea más importante y piensa cómo transmitirla con más energía la próxima vez.",
		emotion.Confiada:   "Transmitiste seguridad. Anota qué hiciste distinto esta vez para poder repetirlo.",
		emotion.Motivada:   "Tu energía se notó. Revisa si el ritmo dejó que cada idea se entendiera antes de pasar a la siguiente.",
		emotion.Entusiasta: "Contagiaste entusiasmo. Asegúrate de que la emoción acompañe al mensaje y no lo tape.",
	}
)

// FeedbackServiceConfig tunes the feedback view.
type FeedbackServiceConfig struct {
	Bands            emotion.Bands
	ResourcesBaseURL string
	CacheTTL         time.Duration
}

// FeedbackServiceParams groups constructor dependencies.
type FeedbackServiceParams struct {
	Presentations presentationReader
	Analyzer      *language.Analyzer
	Cache         *CacheService
	Logger        *zap.Logger
	Config        FeedbackServiceConfig
}

// FeedbackService assembles the per-presentation feedback screen and runs
// ad-hoc language analysis.
type FeedbackService struct {
	presentations presentationReader
	analyzer      *language.Analyzer
	cache         *CacheService
	logger        *zap.Logger
	cfg           FeedbackServiceConfig
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(params FeedbackServiceParams) *FeedbackService {
	cfg := params.Config
	if len(cfg.Bands) == 0 {
		cfg.Bands = emotion.FiveLevelBands
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	analyzer := params.Analyzer
	if analyzer == nil {
		analyzer = language.NewAnalyzer(language.SpanishLexicon)
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		presentations: params.Presentations,
		analyzer:      analyzer,
		cache:         params.Cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// Detail returns the feedback view of one presentation. The detail and the
// textual feedback are fetched concurrently; a feedback failure leaves the
// text section empty.
func (s *FeedbackService) Detail(ctx context.Context, p models.Principal, userID, id string) (*dto.FeedbackViewResponse, bool, error) {
	if id == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "presentation id is required")
	}
	cacheKey := FeedbackCacheKey(userID, id)
	if s.cache != nil {
		var cached dto.FeedbackViewResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	var (
		wg        sync.WaitGroup
		detail    *models.PresentationDetail
		detailErr error
		feedback  *models.Feedback
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detail, detailErr = s.presentations.Detail(ctx, p, userID, id)
	}()
	go func() {
		defer wg.Done()
		fb, err := s.presentations.Feedback(ctx, p, id)
		if err != nil {
			s.logger.Warn("feedback unavailable", zap.String("presentation_id", id), zap.Error(err))
			return
		}
		feedback = fb
	}()
	wg.Wait()
	if detailErr != nil {
		return nil, false, detailErr
	}

	view := s.compose(detail, feedback)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, view, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("feedback cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return view, false, nil
}

// AnalyzeText runs the language analyzer over free text.
func (s *FeedbackService) AnalyzeText(text string) language.Metrics {
	return s.analyzer.Analyze(text)
}

// Suggestions splits a suggestions block. When it does not yield at least
// two items the fallbacks are derived from text.
func (s *FeedbackService) Suggestions(raw, text string) dto.SuggestionsResponse {
	metrics := s.metricsFor(text)
	return dto.SuggestionsResponse{
		Items:    language.ParseSuggestions(raw, metrics),
		Metrics:  metrics,
		Fallback: len(language.SplitSuggestions(raw)) < 2,
	}
}

func (s *FeedbackService) metricsFor(text string) *language.Metrics {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m := s.analyzer.Analyze(text)
	return &m
}

func (s *FeedbackService) compose(detail *models.PresentationDetail, feedback *models.Feedback) *dto.FeedbackViewResponse {
	dist := detail.Distribution()
	if dist == nil {
		dist = emotion.Distribution{}
	}
	dominant := emotion.Normalize(detail.DominantEmotion)
	transcript := strings.TrimSpace(detail.Transcript)
	metrics := s.metricsFor(transcript)
	overall := emotion.ComputeScore(dist, emotion.DisplayOptions)

	view := &dto.FeedbackViewResponse{
		PresentationID:  detail.ID,
		Filename:        detail.Filename,
		CreatedAt:       detail.CreatedAt.Time,
		DominantEmotion: string(dominant),
		EmotionLabel:    dominant.Label(),
		Confidence:      detail.Confidence,
		ConfidenceStars: emotion.ConfidenceStars(detail.Confidence),
		OverallStars:    overall,
		StarsLine:       emotion.StarsLine(overall),
		Score:           s.descriptor(emotion.RawScore(emotion.InputFor(detail.DominantEmotion, dist))),
		Doughnut:        doughnut(dist),
		Levels:          levels(dist),
		Transcript:      transcript,
		Language:        metrics,
		Reflection:      reflections[dominant],
		Resources:       s.resources(dist, dominant, metrics),
		DurationSeconds: detail.Metadata.Duration,
	}
	raw := ""
	if feedback != nil {
		view.Feedback = &dto.FeedbackText{
			General:    feedback.GeneralFeedback,
			Confidence: feedback.ConfidenceFeedback,
			Anxiety:    feedback.AnxietyFeedback,
			Language:   feedback.LanguageFeedback,
		}
		raw = feedback.Suggestions
	}
	view.Suggestions = language.ParseSuggestions(raw, metrics)
	return view
}

func (s *FeedbackService) descriptor(raw float64) dto.ScoreDescriptor {
	colour, named := placeOnBands(s.cfg.Bands, raw)
	return dto.ScoreDescriptor{
		Raw:         raw,
		Percent:     emotion.Percentage(raw),
		LevelIndex:  emotion.LevelIndex(raw),
		LevelName:   named.Name,
		Color:       colour.Color,
		Pale:        colour.Pale,
		Description: named.Description,
		Advice:      named.Advice,
	}
}

func doughnut(dist emotion.Distribution) []dto.EmotionSlice {
	out := make([]dto.EmotionSlice, 0, len(emotion.DisplayOrder))
	for _, key := range emotion.DisplayOrder {
		prob, _ := dist.Prob(key)
		out = append(out, dto.EmotionSlice{
			Key:     string(key),
			Label:   key.Label(),
			Color:   key.Color(),
			Value:   prob * 100,
			Percent: dist.Percent(key),
		})
	}
	return out
}

// levels lists the 0..10 bars of the emotions present in dist.
func levels(dist emotion.Distribution) []dto.EmotionLevel {
	scaled := dist.Levels010()
	out := make([]dto.EmotionLevel, 0, len(scaled))
	for _, key := range emotion.DisplayOrder {
		level, ok := scaled[key]
		if !ok {
			continue
		}
		out = append(out, dto.EmotionLevel{Key: string(key), Label: key.Label(), Level: level})
	}
	return out
}

func (s *FeedbackService) resources(dist emotion.Distribution, dominant emotion.Key, m *language.Metrics) []dto.Resource {
	out := make([]dto.Resource, 0, 5)
	seen := map[string]struct{}{}
	add := func(t resourceTopic, reason string) {
		if _, dup := seen[t.topic]; dup {
			return
		}
		seen[t.topic] = struct{}{}
		out = append(out, dto.Resource{Topic: t.topic, Title: t.title, Reason: reason, URL: s.cfg.ResourcesBaseURL + t.slug})
	}

	anxious, _ := dist.Prob(emotion.Ansiosa)
	nervous, _ := dist.Prob(emotion.Nerviosa)
	if pct := emotion.RoundHalfUp((anxious + nervous) * 100); pct >= anxietyResourcePct {
		add(anxietyResource, fmt.Sprintf("Ansiedad y nerviosismo suman %d%%.", int(pct)))
	}
	if m != nil && m.FillerCount >= fillerResourceCount {
		add(fillersResource, fmt.Sprintf("Se detectaron %d muletillas.", m.FillerCount))
	}
	if m != nil && m.TotalWords < shortSpeechResourceLen {
		add(structureResource, fmt.Sprintf("El discurso tuvo %d palabras.", m.TotalWords))
	}
	if topic, ok := emotionResources[dominant]; ok {
		add(topic, fmt.Sprintf("Tu emoción dominante fue %s.", strings.ToLower(dominant.Label())))
	}
	add(practiceResource, "Grábate de nuevo y compara con esta presentación.")
	return out
}
