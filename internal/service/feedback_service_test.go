package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
	"github.com/noah-isme/oratoria-api/pkg/language"
)

type fakeReader struct {
	mu          sync.Mutex
	detail      *models.PresentationDetail
	detailErr   error
	feedback    *models.Feedback
	feedbackErr error
	detailCalls int
}

func (f *fakeReader) Detail(context.Context, models.Principal, string, string) (*models.PresentationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

func (f *fakeReader) Feedback(context.Context, models.Principal, string) (*models.Feedback, error) {
	if f.feedbackErr != nil {
		return nil, f.feedbackErr
	}
	return f.feedback, nil
}

func newTestFeedback(reader presentationReader, cache *CacheService) *FeedbackService {
	return NewFeedbackService(FeedbackServiceParams{
		Presentations: reader,
		Cache:         cache,
		Config:        FeedbackServiceConfig{ResourcesBaseURL: "https://learn.example/?q="},
	})
}

func sampleDetail() *models.PresentationDetail {
	return &models.PresentationDetail{
		Presentation: models.Presentation{
			ID:              "p1",
			Filename:        "pitch.wav",
			DominantEmotion: "Confiada",
			Confidence:      0.82,
			CreatedAt:       models.Timestamp{Time: time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)},
		},
		Transcript:           "  Bueno, este proyecto, o sea, pues funciona.  ",
		EmotionProbabilities: map[string]float64{"ansiosa": 0.2, "nerviosa": 0.15, "confiada": 0.65},
		Metadata:             models.AudioMetadata{Duration: 31},
	}
}

func TestFeedbackDetailComposesView(t *testing.T) {
	reader := &fakeReader{
		detail: sampleDetail(),
		feedback: &models.Feedback{
			GeneralFeedback: "Buen trabajo",
			Suggestions:     "1) Respira antes de empezar\n2) Mira al público",
		},
	}
	svc := newTestFeedback(reader, nil)

	view, hit, err := svc.Detail(context.Background(), studentPrincipal, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, "confiada", view.DominantEmotion)
	assert.Equal(t, 4, view.ConfidenceStars)
	assert.InDelta(t, 2.0, view.OverallStars, 1e-9)
	assert.Equal(t, emotion.StarsLine(2), view.StarsLine)

	// raw = 0.2*1 + 0.15*0 + 0.65*3
	assert.InDelta(t, 2.15, view.Score.Raw, 1e-9)
	assert.InDelta(t, 43, view.Score.Percent, 1e-9)
	assert.Equal(t, 3, view.Score.LevelIndex)
	assert.Equal(t, "Neutro", view.Score.LevelName)

	require.Len(t, view.Doughnut, 6)
	assert.Equal(t, "confiada", view.Doughnut[0].Key)
	assert.InDelta(t, 65, view.Doughnut[0].Value, 1e-9)
	assert.Equal(t, 65, view.Doughnut[0].Percent)
	assert.Equal(t, "entusiasta", view.Doughnut[2].Key)
	assert.Zero(t, view.Doughnut[2].Value)

	require.Len(t, view.Levels, 3)
	assert.Equal(t, "confiada", view.Levels[0].Key)
	assert.InDelta(t, 6.5, view.Levels[0].Level, 1e-9)
	assert.Equal(t, "nerviosa", view.Levels[2].Key)
	assert.InDelta(t, 1.5, view.Levels[2].Level, 1e-9)

	assert.Equal(t, "Bueno, este proyecto, o sea, pues funciona.", view.Transcript)
	require.NotNil(t, view.Language)
	assert.Equal(t, 4, view.Language.FillerCount)
	require.NotNil(t, view.Feedback)
	assert.Equal(t, "Buen trabajo", view.Feedback.General)
	assert.Equal(t, []string{"Respira antes de empezar", "Mira al público"}, view.Suggestions)
	assert.NotEmpty(t, view.Reflection)

	topics := make([]string, 0, len(view.Resources))
	for _, r := range view.Resources {
		topics = append(topics, r.Topic)
	}
	assert.Equal(t, []string{"anxiety", "fillers", "structure", "body", "practice"}, topics)
	assert.Equal(t, "Ansiedad y nerviosismo suman 35%.", view.Resources[0].Reason)
	assert.Equal(t, "https://learn.example/?q=grabarse-para-mejorar-oratoria", view.Resources[4].URL)
}

func TestFeedbackDetailDegradesWithoutFeedback(t *testing.T) {
	detail := &models.PresentationDetail{Presentation: models.Presentation{ID: "p2", DominantEmotion: "neutra", Confidence: 0.1}}
	reader := &fakeReader{detail: detail, feedbackErr: appErrors.Clone(appErrors.ErrUpstream, "")}
	svc := newTestFeedback(reader, nil)

	view, _, err := svc.Detail(context.Background(), studentPrincipal, "u1", "p2")
	require.NoError(t, err)
	assert.Nil(t, view.Feedback)
	assert.Nil(t, view.Language)
	assert.Empty(t, view.Levels)
	assert.InDelta(t, 0.5, view.OverallStars, 1e-9)
	assert.Equal(t, 1, view.ConfidenceStars)
	assert.Equal(t, []string{language.SuggestionRecording}, view.Suggestions)
	require.Len(t, view.Resources, 2)
	assert.Equal(t, "voice", view.Resources[0].Topic)
	assert.Equal(t, "practice", view.Resources[1].Topic)
}

func TestFeedbackDetailPropagatesDetailErrors(t *testing.T) {
	reader := &fakeReader{detailErr: appErrors.Clone(appErrors.ErrNotFound, "presentation not found")}
	svc := newTestFeedback(reader, nil)

	_, _, err := svc.Detail(context.Background(), studentPrincipal, "u1", "p404")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, _, err = svc.Detail(context.Background(), studentPrincipal, "u1", "")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFeedbackDetailUsesCache(t *testing.T) {
	repo := &memoryCache{}
	reader := &fakeReader{detail: sampleDetail()}
	svc := newTestFeedback(reader, newMemoryCacheService(repo))
	ctx := context.Background()

	_, hit, err := svc.Detail(ctx, studentPrincipal, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, hit)

	view, hit, err := svc.Detail(ctx, studentPrincipal, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "p1", view.PresentationID)
	assert.Equal(t, 1, reader.detailCalls)
	assert.Contains(t, repo.keys(), FeedbackCacheKey("u1", "p1"))
}

func TestFeedbackSuggestions(t *testing.T) {
	svc := newTestFeedback(&fakeReader{}, nil)

	parsed := svc.Suggestions("1) Do X\n2) Do Y", "")
	assert.False(t, parsed.Fallback)
	assert.Equal(t, []string{"Do X", "Do Y"}, parsed.Items)
	assert.Nil(t, parsed.Metrics)

	fallback := svc.Suggestions("Solo una idea", "este este")
	assert.True(t, fallback.Fallback)
	require.NotNil(t, fallback.Metrics)
	assert.Equal(t, []string{language.SuggestionFillers, language.SuggestionStructure, language.SuggestionRecording}, fallback.Items)
}

func TestFeedbackAnalyzeText(t *testing.T) {
	svc := newTestFeedback(&fakeReader{}, nil)

	empty := svc.AnalyzeText("")
	assert.Zero(t, empty.TotalWords)
	assert.Equal(t, []string{language.TipExercises, language.TipClosing}, empty.Tips)

	m := svc.AnalyzeText("Estoy seguro y tranquilo")
	assert.Equal(t, 4, m.TotalWords)
	assert.Equal(t, 2, m.PositiveWords)
}
