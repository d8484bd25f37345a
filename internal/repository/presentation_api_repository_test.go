package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls map[string][]error
}

func (o *recordingObserver) ObserveUpstream(endpoint string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = map[string][]error{}
	}
	o.calls[endpoint] = append(o.calls[endpoint], err)
}

func newAPIRepo(t *testing.T, handler http.HandlerFunc, retries int) (*PresentationAPIRepository, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	repo := NewPresentationAPIRepository(PresentationAPIConfig{
		BaseURL:    srv.URL + "/api/",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	}, srv.Client(), obs, nil)
	return repo, obs
}

func TestPresentationAPIListSummaries(t *testing.T) {
	repo, obs := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/presentation/summary", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"p1","filename":"a.wav","dominant_emotion":"Confiada","confidence":0.8,"created_at":"2025-09-02T10:00:00"}]`)
	}, 0)

	items, err := repo.ListSummaries(context.Background(), "tok", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC), items[0].CreatedAt.Time)
	assert.Equal(t, []error{nil}, obs.calls[EndpointSummaries])
}

func TestPresentationAPISummariesForCoachedUser(t *testing.T) {
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "student-7", r.URL.Query().Get("user_id"))
		_, _ = io.WriteString(w, `[]`)
	}, 0)

	items, err := repo.ListSummaries(context.Background(), "tok", "student-7")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPresentationAPIEmptySummaries(t *testing.T) {
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}, 0)

	items, err := repo.ListSummaries(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestPresentationAPIDetailNotFound(t *testing.T) {
	var hits int32
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "missing", http.StatusNotFound)
	}, 2)

	_, err := repo.GetDetail(context.Background(), "tok", "p9")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "4xx answers are not retried")
}

func TestPresentationAPIRetriesServerErrors(t *testing.T) {
	var hits int32
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"id":"p1","transcript":"hola","emotion_probabilities":{"confiada":0.6,"motivada":0.4},"metadata":{"duration":12.5}}`)
	}, 2)

	detail, err := repo.GetDetail(context.Background(), "tok", "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
	assert.Equal(t, "hola", detail.Transcript)
	assert.InDelta(t, 0.6, detail.EmotionProbabilities["confiada"], 1e-9)
	assert.InDelta(t, 12.5, detail.Metadata.Duration, 1e-9)
}

func TestPresentationAPIServerErrorExhaustsRetries(t *testing.T) {
	repo, obs := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, 0)

	_, err := repo.GetDetail(context.Background(), "tok", "p1")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	require.Len(t, obs.calls[EndpointDetail], 1)
	assert.Error(t, obs.calls[EndpointDetail][0])
}

func TestPresentationAPIFeedbackShapes(t *testing.T) {
	cases := map[string]struct {
		body    string
		nilWant bool
		general string
	}{
		"object": {body: `{"general_feedback":"Bien"}`, general: "Bien"},
		"array":  {body: `[{"general_feedback":"Primero"},{"general_feedback":"Segundo"}]`, general: "Primero"},
		"null":   {body: `null`, nilWant: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/feedback/p1", r.URL.Path)
				_, _ = io.WriteString(w, tc.body)
			}, 0)
			fb, err := repo.GetFeedback(context.Background(), "tok", "p1")
			require.NoError(t, err)
			if tc.nilWant {
				assert.Nil(t, fb)
				return
			}
			require.NotNil(t, fb)
			assert.Equal(t, tc.general, fb.GeneralFeedback)
		})
	}
}

func TestPresentationAPIAudioURL(t *testing.T) {
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/presentation/p1/audio-url", r.URL.Path)
		_, _ = io.WriteString(w, `{"url":"https://cdn.example/p1.wav"}`)
	}, 0)

	audio, err := repo.GetAudioURL(context.Background(), "tok", "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/p1.wav", audio.URL)
}

func TestPresentationAPIUpload(t *testing.T) {
	repo, obs := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/presentations/upload", r.URL.Path)
		file, header, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "clip.wav", header.Filename)
		assert.Equal(t, "RIFF", string(data))
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","presentation":{"id":"p7","filename":"clip.wav"}}`)
	}, 3)

	res, err := repo.Upload(context.Background(), "tok", "clip.wav", strings.NewReader("RIFF"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Presentation)
	assert.Equal(t, "p7", res.Presentation.ID)
	assert.Len(t, obs.calls[EndpointUpload], 1)
}

func TestPresentationAPIUnauthorized(t *testing.T) {
	repo, _ := newAPIRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, 2)

	_, err := repo.ListSummaries(context.Background(), "bad", "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestPresentationAPIUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	repo := NewPresentationAPIRepository(PresentationAPIConfig{BaseURL: base, Timeout: time.Second}, nil, nil, nil)
	_, err := repo.ListSummaries(context.Background(), "tok", "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErr.Code)
}
