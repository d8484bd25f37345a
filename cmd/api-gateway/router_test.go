package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/handler"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/internal/service"
	"github.com/noah-isme/oratoria-api/pkg/config"
)

const testSecret = "router-secret"

func testRouter(t *testing.T, withExports bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	deps := routerDeps{
		tokens:        service.NewTokenService(service.TokenServiceConfig{Secret: testSecret}),
		metrics:       metrics,
		dashboard:     handler.NewDashboardHandler(nil, nil),
		presentations: handler.NewPresentationHandler(nil, nil),
		feedback:      handler.NewFeedbackHandler(nil, nil),
		ops:           handler.NewMetricsHandler(metrics, nil),
	}
	if withExports {
		deps.exports = handler.NewExportHandler(nil)
	}
	cfg := &config.Config{
		Env:       config.EnvProduction,
		APIPrefix: "/api/v1/",
		Dashboard: config.DashboardConfig{Enabled: true},
	}
	return newRouter(cfg, deps, zap.NewNop())
}

func bearer(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func serve(r *gin.Engine, method, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterOpsEndpoints(t *testing.T) {
	r := testRouter(t, false)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)

	rec := serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/docs/index.html", "").Code)
}

func TestRouterRequiresToken(t *testing.T) {
	r := testRouter(t, false)

	for _, target := range []string{"/api/v1/dashboard/home", "/api/v1/presentations", "/api/v1/users/u1/dashboard"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, target, "").Code, target)
	}
}

func TestRouterUserDashboardAccess(t *testing.T) {
	r := testRouter(t, false)

	rec := serve(r, http.MethodGet, "/api/v1/users/u2/dashboard", bearer(t, "u1", models.RoleStudent))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Past RBAC the handler has no service wired.
	rec = serve(r, http.MethodGet, "/api/v1/users/u1/dashboard", bearer(t, "u1", models.RoleStudent))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/users/u2/dashboard", bearer(t, "c1", models.RoleCoach))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouterMetricsSummaryIsAdminOnly(t *testing.T) {
	r := testRouter(t, false)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/metrics/summary", bearer(t, "u1", models.RoleStudent)).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/metrics/summary", bearer(t, "a1", models.RoleAdmin)).Code)
}

func TestRouterExportRoutesFollowFeatureFlag(t *testing.T) {
	disabled := testRouter(t, false)
	assert.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/api/v1/export/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/api/v1/exports/j1", bearer(t, "u1", models.RoleStudent)).Code)

	enabled := testRouter(t, true)
	// Downloads skip JWT; the unwired service answers 500.
	assert.Equal(t, http.StatusInternalServerError, serve(enabled, http.MethodGet, "/api/v1/export/abc", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(enabled, http.MethodGet, "/api/v1/exports/j1", "").Code)
}
