package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/oratoria-api/api/swagger"
	"github.com/noah-isme/oratoria-api/internal/handler"
	"github.com/noah-isme/oratoria-api/internal/repository"
	"github.com/noah-isme/oratoria-api/internal/service"
	"github.com/noah-isme/oratoria-api/pkg/cache"
	"github.com/noah-isme/oratoria-api/pkg/config"
	"github.com/noah-isme/oratoria-api/pkg/database"
	"github.com/noah-isme/oratoria-api/pkg/emotion"
	"github.com/noah-isme/oratoria-api/pkg/history"
	"github.com/noah-isme/oratoria-api/pkg/jobs"
	"github.com/noah-isme/oratoria-api/pkg/language"
	"github.com/noah-isme/oratoria-api/pkg/logger"
	"github.com/noah-isme/oratoria-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Oratoria API
// @version 1.0.0
// @description Coaching dashboard for recorded presentations: emotion scoring, history and feedback.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Coaching.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid coaching timezone", "timezone", cfg.Coaching.Timezone, "error", err)
	}
	bands, err := loadBands(cfg.Coaching)
	if err != nil {
		logr.Sugar().Fatalw("invalid band table", "error", err)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	db := openDatabase(ctx, cfg, logr)
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = db.PingContext
	}

	var cacheRepo service.CacheRepository
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "addr", cache.Addr(cfg.Redis), "error", err)
	} else {
		redisRepo := repository.NewCacheRepository(client, logr.Named("cache"))
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		checks["redis"] = redisRepo.Ping
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr.Named("cache"), cacheRepo != nil)

	upstream := repository.NewPresentationAPIRepository(repository.PresentationAPIConfig{
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    cfg.Upstream.Timeout,
		MaxRetries: cfg.Upstream.MaxRetries,
	}, nil, metrics, logr.Named("upstream"))

	presentationParams := service.PresentationServiceParams{
		Source:  upstream,
		Cache:   cacheSvc,
		Metrics: metrics,
		Logger:  logr.Named("presentations"),
		Config: service.PresentationServiceConfig{
			FetchConcurrency: cfg.Upstream.FetchConcurrency,
			MaxUploadBytes:   cfg.Upstream.MaxUploadBytes,
			Location:         loc,
		},
	}
	var favorites *repository.FavoriteRepository
	if db != nil {
		favorites = repository.NewFavoriteRepository(db)
		presentationParams.Favorites = favorites
		if cfg.Snapshots.Enabled {
			presentationParams.Snapshots = repository.NewSnapshotRepository(db)
		}
	}
	presentations := service.NewPresentationService(presentationParams)

	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		History: presentations,
		Cache:   cacheSvc,
		Logger:  logr.Named("dashboard"),
		Config: service.DashboardServiceConfig{
			CacheTTL:            cfg.Dashboard.CacheTTL,
			Bands:               bands,
			Location:            loc,
			DefaultPeriod:       history.Period(cfg.Coaching.DefaultPeriod),
			MovingAverageWindow: cfg.Coaching.MovingAverageWindow,
			RecentLimit:         cfg.Coaching.RecentLimit,
		},
	})

	feedback := service.NewFeedbackService(service.FeedbackServiceParams{
		Presentations: presentations,
		Analyzer:      language.NewAnalyzer(language.SpanishLexicon),
		Cache:         cacheSvc,
		Logger:        logr.Named("feedback"),
		Config: service.FeedbackServiceConfig{
			Bands:            bands,
			ResourcesBaseURL: cfg.Coaching.ResourcesBaseURL,
			CacheTTL:         cfg.Dashboard.CacheTTL,
		},
	})

	tokens := service.NewTokenService(service.TokenServiceConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Leeway: 30 * time.Second,
	})

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		if db == nil {
			logr.Warn("exports require postgres; export routes disabled")
		} else {
			exportJobs, queue, err := buildExports(ctx, cfg, db, presentations, favorites, metrics, validate, bands, loc, logr)
			if err != nil {
				logr.Sugar().Fatalw("failed to init exports", "error", err)
			}
			defer func() {
				logr.Sugar().Infow("stopping export queue", "pending", queue.Pending())
				queue.Stop()
			}()
			exportHandler = handler.NewExportHandler(exportJobs)
		}
	}

	r := newRouter(cfg, routerDeps{
		location:      loc,
		tokens:        tokens,
		metrics:       metrics,
		dashboard:     handler.NewDashboardHandler(dashboard, validate),
		presentations: handler.NewPresentationHandler(presentations, validate),
		feedback:      handler.NewFeedbackHandler(feedback, validate),
		exports:       exportHandler,
		ops:           handler.NewMetricsHandler(metrics, checks),
	}, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

func loadBands(cfg config.CoachingConfig) (emotion.Bands, error) {
	if cfg.BandsFile != "" {
		return emotion.LoadBands(cfg.BandsFile)
	}
	return emotion.BandsByName(cfg.Bands)
}

// openDatabase connects to Postgres and applies the schema. The service runs
// without favourites, snapshots and exports when the database is down.
func openDatabase(ctx context.Context, cfg *config.Config, logr *zap.Logger) *sqlx.DB {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Warnw("postgres unavailable, persistence disabled", "host", cfg.Database.Host, "error", err)
		return nil
	}
	if err := database.Migrate(ctx, db); err != nil {
		logr.Sugar().Warnw("schema migration failed, persistence disabled", "error", err)
		_ = db.Close()
		return nil
	}
	return db
}

func buildExports(
	ctx context.Context,
	cfg *config.Config,
	db *sqlx.DB,
	presentations *service.PresentationService,
	favorites *repository.FavoriteRepository,
	metrics *service.MetricsService,
	validate *validator.Validate,
	bands emotion.Bands,
	loc *time.Location,
	logr *zap.Logger,
) (*service.ExportJobService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	exporter := service.NewExportService(service.ExportServiceParams{
		History:   presentations,
		Favorites: favorites,
		Storage:   files,
		Signer:    storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		Logger:    logr.Named("exports"),
		Config: service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			Location:  loc,
			Bands:     bands,
		},
	})

	repo := repository.NewExportJobRepository(db)
	worker := service.NewExportWorker(repo, exporter, cfg.Exports.WorkerRetries, logr.Named("export-worker"))
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr.Named("queue"),
		Observer: func(job jobs.Job, err error, elapsed time.Duration) {
			metrics.RecordExportJob(job.Type, err != nil, elapsed)
		},
	})
	queue.Start(ctx)

	svc := service.NewExportJobService(repo, queue, exporter, validate, logr.Named("exports"), service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		Location:        loc,
	})
	svc.RecoverPendingJobs(ctx)
	svc.StartCleanup(ctx)
	return svc, queue, nil
}
