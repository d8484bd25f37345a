package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "http://localhost:8000/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 8, cfg.Upstream.FetchConcurrency)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "America/Lima", cfg.Coaching.Timezone)
	assert.Equal(t, "30d", cfg.Coaching.DefaultPeriod)
	assert.Equal(t, 3, cfg.Coaching.MovingAverageWindow)
	assert.Equal(t, "five", cfg.Coaching.Bands)
	assert.True(t, cfg.Dashboard.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.False(t, cfg.Exports.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 10*time.Minute, cfg.CORS.MaxAge)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("UPSTREAM_BASE_URL", "https://analysis.example.com/api/")
	v.Set("ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("COACH_BANDS", "six")

	cfg := fromViper(v)

	assert.Equal(t, "https://analysis.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "six", cfg.Coaching.Bands)
}

func TestSplitAndTrimEmpty(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
}
