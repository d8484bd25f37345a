package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/oratoria-api/internal/handler"
	"github.com/noah-isme/oratoria-api/internal/middleware"
	"github.com/noah-isme/oratoria-api/internal/models"
	"github.com/noah-isme/oratoria-api/internal/service"
	"github.com/noah-isme/oratoria-api/pkg/config"
	"github.com/noah-isme/oratoria-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/oratoria-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/oratoria-api/pkg/middleware/requestid"
)

type routerDeps struct {
	location      *time.Location
	tokens        *service.TokenService
	metrics       *service.MetricsService
	dashboard     *handler.DashboardHandler
	presentations *handler.PresentationHandler
	feedback      *handler.FeedbackHandler
	exports       *handler.ExportHandler
	ops           *handler.MetricsHandler
}

func newRouter(cfg *config.Config, deps routerDeps, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta(deps.location))

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	api := r.Group(prefix)

	// Signed download links carry their own authorization.
	if deps.exports != nil {
		api.GET("/export/:token", deps.exports.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.tokens))

	if cfg.Dashboard.Enabled {
		secured.GET("/dashboard/home", deps.dashboard.Home)
		secured.GET("/dashboard/bars", deps.dashboard.Bars)
		secured.GET("/users/:id/dashboard",
			middleware.RBAC("SELF", string(models.RoleCoach), string(models.RoleAdmin)),
			deps.dashboard.UserHome)
	}

	presentations := secured.Group("/presentations")
	presentations.GET("", deps.presentations.List)
	presentations.POST("/upload", deps.presentations.Upload)
	presentations.GET("/:id/feedback", deps.feedback.Detail)
	presentations.GET("/:id/audio", deps.presentations.Audio)
	presentations.PUT("/:id/favorite", deps.presentations.AddFavorite)
	presentations.DELETE("/:id/favorite", deps.presentations.RemoveFavorite)

	lang := secured.Group("/language")
	lang.POST("/analyze", deps.feedback.Analyze)
	lang.POST("/suggestions", deps.feedback.Suggestions)

	if deps.exports != nil {
		secured.POST("/exports", deps.exports.Create)
		secured.GET("/exports/:id", deps.exports.Status)
	}

	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), deps.ops.Summary)

	return r
}
