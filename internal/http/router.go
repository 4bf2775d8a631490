package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/feedbacklens/backend/internal/ai"
	"github.com/feedbacklens/backend/internal/config"
	"github.com/feedbacklens/backend/internal/db"
	"github.com/feedbacklens/backend/internal/http/handlers"
	"github.com/feedbacklens/backend/internal/http/middleware"
	"github.com/feedbacklens/backend/internal/pipeline"
	"github.com/feedbacklens/backend/internal/source"

	_ "github.com/feedbacklens/backend/docs"
)

func Router(cfg config.Config, store *db.Store, analyzers map[string]ai.Analyzer, rowSource source.RowSource, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:           store,
		Analyzers:       analyzers,
		DefaultProvider: cfg.AIProvider,
		Source:          rowSource,
		Validator:       validator.New(),
		Logger:          logger,
		PipelineOptions: pipeline.Options{
			Workers:            cfg.AIWorkers,
			Retries:            cfg.AIRetries,
			TopAspects:         cfg.TopAspects,
			MaxRecommendations: cfg.MaxRecommendations,
			NegativeSample:     cfg.NegativeSample,
		},
		BatchTimeout: cfg.BatchTimeout,
		MaxComments:  cfg.MaxComments,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/sentiment-summary", h.SentimentSummary)
		api.GET("/runs", h.RunsList)
		api.GET("/runs/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/upload", h.Upload)
		admin.POST("/analyze-url", h.AnalyzeURL)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
