package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/models"
	appErrors "github.com/noah-isme/oratoria-api/pkg/errors"
)

// Upstream endpoint labels used for metrics and logs.
const (
	EndpointSummaries = "summaries"
	EndpointDetail    = "detail"
	EndpointFeedback  = "feedback"
	EndpointAudioURL  = "audio_url"
	EndpointUpload    = "upload"
)

const maxErrorBody = 512

// UpstreamObserver receives the outcome of every upstream call.
type UpstreamObserver interface {
	ObserveUpstream(endpoint string, err error, duration time.Duration)
}

// PresentationAPIConfig configures the analysis backend client.
type PresentationAPIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// MaxElapsed bounds the total time spent retrying one call.
	MaxElapsed time.Duration
}

// PresentationAPIRepository reads presentations from the analysis backend
// over REST, forwarding the caller's bearer token.
type PresentationAPIRepository struct {
	client   *http.Client
	baseURL  string
	cfg      PresentationAPIConfig
	observer UpstreamObserver
	logger   *zap.Logger
}

// NewPresentationAPIRepository constructs the client. A nil httpClient gets
// one with the configured timeout.
func NewPresentationAPIRepository(cfg PresentationAPIConfig, httpClient *http.Client, observer UpstreamObserver, logger *zap.Logger) *PresentationAPIRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 2 * cfg.Timeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresentationAPIRepository{
		client:   httpClient,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cfg:      cfg,
		observer: observer,
		logger:   logger,
	}
}

// ListSummaries returns the presentations of userID, or of the token owner
// when userID is empty.
func (r *PresentationAPIRepository) ListSummaries(ctx context.Context, token, userID string) ([]models.Presentation, error) {
	path := "/v1/presentation/summary"
	if userID != "" {
		path += "?" + url.Values{"user_id": {userID}}.Encode()
	}
	var out []models.Presentation
	if err := r.getJSON(ctx, EndpointSummaries, token, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Presentation{}
	}
	return out, nil
}

// GetDetail returns the full analysis of one presentation.
func (r *PresentationAPIRepository) GetDetail(ctx context.Context, token, id string) (*models.PresentationDetail, error) {
	var out models.PresentationDetail
	if err := r.getJSON(ctx, EndpointDetail, token, "/v1/presentation/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

// GetFeedback returns the textual feedback, or nil when the backend has none.
func (r *PresentationAPIRepository) GetFeedback(ctx context.Context, token, id string) (*models.Feedback, error) {
	var payload models.FeedbackPayload
	if err := r.getJSON(ctx, EndpointFeedback, token, "/v1/feedback/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	return payload.Normalize(), nil
}

// GetAudioURL returns a signed link to the original recording.
func (r *PresentationAPIRepository) GetAudioURL(ctx context.Context, token, id string) (*models.AudioURL, error) {
	var out models.AudioURL
	if err := r.getJSON(ctx, EndpointAudioURL, token, "/v1/presentation/"+url.PathEscape(id)+"/audio-url", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload forwards an audio file as the multipart field "audio". Uploads are
// not retried.
func (r *PresentationAPIRepository) Upload(ctx context.Context, token, filename string, audio io.Reader) (*models.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read audio file")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upload")
	}

	start := time.Now()
	var out models.UploadResult
	err = r.do(ctx, EndpointUpload, false, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/presentations/upload", bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		setAuth(req, token)
		return req, nil
	}, &out)
	r.observe(EndpointUpload, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PresentationAPIRepository) getJSON(ctx context.Context, endpoint, token, path string, target interface{}) error {
	start := time.Now()
	err := r.do(ctx, endpoint, true, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		setAuth(req, token)
		return req, nil
	}, target)
	r.observe(endpoint, err, time.Since(start))
	return err
}

// do runs one call with exponential backoff. 4xx answers are permanent;
// transport errors and 5xx answers are retried up to MaxRetries times.
func (r *PresentationAPIRepository) do(ctx context.Context, endpoint string, retry bool, build func() (*http.Request, error), target interface{}) error {
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if retry && r.cfg.MaxRetries > 0 {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 200 * time.Millisecond
		bo.MaxElapsedTime = r.cfg.MaxElapsed
		policy = backoff.WithMaxRetries(bo, uint64(r.cfg.MaxRetries))
	}
	policy = backoff.WithContext(policy, ctx)

	attempt := 0
	op := func() error {
		attempt++
		req, err := build()
		if err != nil {
			return backoff.Permanent(appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request"))
		}
		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(appErrors.Wrap(ctx.Err(), appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message))
			}
			r.logger.Debug("upstream transport error", zap.String("endpoint", endpoint), zap.Int("attempt", attempt), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			mapped := statusError(resp)
			if resp.StatusCode >= 500 {
				r.logger.Debug("upstream server error", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
				return mapped
			}
			return backoff.Permanent(mapped)
		}

		if target == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return backoff.Permanent(appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "analysis backend returned an unreadable payload"))
		}
		return nil
	}

	err := backoff.Retry(op, policy)
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
}

func (r *PresentationAPIRepository) observe(endpoint string, err error, d time.Duration) {
	if r.observer != nil {
		r.observer.ObserveUpstream(endpoint, err, d)
	}
	if err != nil {
		r.logger.Warn("upstream call failed", zap.String("endpoint", endpoint), zap.Duration("duration", d), zap.Error(err))
	}
}

func statusError(resp *http.Response) *appErrors.Error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	cause := fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return appErrors.Wrap(cause, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "presentation not found")
	case resp.StatusCode == http.StatusUnauthorized:
		return appErrors.Wrap(cause, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "analysis backend rejected the token")
	case resp.StatusCode == http.StatusForbidden:
		return appErrors.Wrap(cause, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, appErrors.ErrForbidden.Message)
	case resp.StatusCode == http.StatusRequestEntityTooLarge || resp.StatusCode == http.StatusUnsupportedMediaType || resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return appErrors.Wrap(cause, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "analysis backend rejected the request")
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusGatewayTimeout:
		return appErrors.Wrap(cause, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	default:
		return appErrors.Wrap(cause, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
