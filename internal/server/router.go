package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/http/handlers"
	"github.com/yungbote/transcriptomics-backend/internal/http/middleware"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	CORSAllowOrigins []string

	AuthzMiddleware *middleware.AuthzMiddleware

	HealthHandler      *handlers.HealthHandler
	ServiceInfoHandler *handlers.ServiceInfoHandler
	ExperimentHandler  *handlers.ExperimentHandler
	IngestHandler      *handlers.IngestHandler
	NormalizeHandler   *handlers.NormalizeHandler
	QueryHandler       *handlers.QueryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Trace-Id", "X-Request-Id"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	router.GET("/service-info", cfg.ServiceInfoHandler.ServiceInfo)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthzMiddleware.Require())

	// Experiments
	protected.POST("/experiment", cfg.ExperimentHandler.Create)
	protected.GET("/experiment", cfg.ExperimentHandler.List)
	protected.GET("/experiment/:experiment_result_id", cfg.ExperimentHandler.Get)
	protected.PUT("/experiment/:experiment_result_id", cfg.ExperimentHandler.UpdateAssembly)
	protected.DELETE("/experiment/:experiment_result_id", cfg.ExperimentHandler.Delete)
	protected.POST("/experiment/:experiment_result_id/samples", cfg.ExperimentHandler.Samples)
	protected.POST("/experiment/:experiment_result_id/features", cfg.ExperimentHandler.Features)

	// Ingestion
	protected.POST("/experiment/:experiment_result_id/ingest/matrix", cfg.IngestHandler.IngestMatrix)
	protected.POST("/experiment/:experiment_result_id/ingest/single", cfg.IngestHandler.IngestSample)

	// Normalization
	protected.POST("/normalize/:experiment_result_id/:method", cfg.NormalizeHandler.Normalize)

	// Queries
	protected.GET("/query/expressions_all", cfg.QueryHandler.ExpressionsAll)
	protected.POST("/query/expressions", cfg.QueryHandler.Expressions)

	return router
}
