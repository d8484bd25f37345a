package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Upstream  UpstreamConfig
	Coaching  CoachingConfig
	Dashboard DashboardConfig
	Snapshots SnapshotConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the verification settings for tokens issued by the auth provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig points at the speech analysis backend.
type UpstreamConfig struct {
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	FetchConcurrency int
	MaxUploadBytes   int64
}

// CoachingConfig tunes how histories are scored and presented.
type CoachingConfig struct {
	Timezone            string
	DefaultPeriod       string
	MovingAverageWindow int
	Bands               string
	BandsFile           string
	ResourcesBaseURL    string
	RecentLimit         int
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// SnapshotConfig toggles persistence of analysed presentation details.
type SnapshotConfig struct {
	Enabled bool
}

// ExportsConfig configures asynchronous history exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Upstream = UpstreamConfig{
		BaseURL:          strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout:          parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
		MaxRetries:       v.GetInt("UPSTREAM_MAX_RETRIES"),
		FetchConcurrency: v.GetInt("UPSTREAM_FETCH_CONCURRENCY"),
		MaxUploadBytes:   v.GetInt64("UPSTREAM_MAX_UPLOAD_BYTES"),
	}

	cfg.Coaching = CoachingConfig{
		Timezone:            v.GetString("COACH_TIMEZONE"),
		DefaultPeriod:       v.GetString("COACH_DEFAULT_PERIOD"),
		MovingAverageWindow: v.GetInt("COACH_MOVING_AVERAGE_WINDOW"),
		Bands:               v.GetString("COACH_BANDS"),
		BandsFile:           v.GetString("COACH_BANDS_FILE"),
		ResourcesBaseURL:    strings.TrimRight(v.GetString("COACH_RESOURCES_BASE_URL"), "/"),
		RecentLimit:         v.GetInt("COACH_RECENT_LIMIT"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Snapshots = SnapshotConfig{
		Enabled: v.GetBool("ENABLE_SNAPSHOTS"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "oratoria")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_MAX_AGE", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")
	v.SetDefault("UPSTREAM_MAX_RETRIES", 2)
	v.SetDefault("UPSTREAM_FETCH_CONCURRENCY", 8)
	v.SetDefault("UPSTREAM_MAX_UPLOAD_BYTES", 25*1024*1024)

	v.SetDefault("COACH_TIMEZONE", "America/Lima")
	v.SetDefault("COACH_DEFAULT_PERIOD", "30d")
	v.SetDefault("COACH_MOVING_AVERAGE_WINDOW", 3)
	v.SetDefault("COACH_BANDS", "five")
	v.SetDefault("COACH_BANDS_FILE", "")
	v.SetDefault("COACH_RESOURCES_BASE_URL", "https://www.youtube.com/results?search_query=")
	v.SetDefault("COACH_RECENT_LIMIT", 6)

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_SNAPSHOTS", false)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
