package main

import (
	"fmt"
	"os"

	"github.com/yungbote/transcriptomics-backend/internal/authz"
	"github.com/yungbote/transcriptomics-backend/internal/config"
	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/db"
	"github.com/yungbote/transcriptomics-backend/internal/http/handlers"
	"github.com/yungbote/transcriptomics-backend/internal/http/middleware"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
	"github.com/yungbote/transcriptomics-backend/internal/server"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Logger
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	serviceInfo, err := cfg.LoadServiceInfo()
	if err != nil {
		log.Fatal("Loading service info failed", "error", err)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(cfg, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	experimentRepo := expression.NewExperimentRepo(thePG, log)
	expressionRepo := expression.NewGeneExpressionRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	experimentService := services.NewExperimentService(thePG, log, experimentRepo, expressionRepo)
	ingestionService := services.NewIngestionService(thePG, log, experimentRepo, expressionRepo)
	normalizationService := services.NewNormalizationService(thePG, log, expressionRepo, cfg.NormalizeParallel)
	queryService := services.NewQueryService(thePG, log, expressionRepo)

	// Authz
	authorizer, err := authz.New(cfg)
	if err != nil {
		log.Fatal("Authorizer init failed", "error", err, "mode", cfg.AuthzMode)
	}
	log.Info("Authorizer ready", "mode", cfg.AuthzMode)

	// Handlers
	log.Info("Setting up Handlers from main...")
	healthHandler := handlers.NewHealthHandler()
	serviceInfoHandler := handlers.NewServiceInfoHandler(serviceInfo)
	experimentHandler := handlers.NewExperimentHandler(log, experimentService)
	ingestHandler := handlers.NewIngestHandler(log, ingestionService)
	normalizeHandler := handlers.NewNormalizeHandler(log, normalizationService)
	queryHandler := handlers.NewQueryHandler(log, queryService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:                log,
		CORSAllowOrigins:   cfg.CORSAllowOrigins,
		AuthzMiddleware:    middleware.NewAuthzMiddleware(log, authorizer),
		HealthHandler:      healthHandler,
		ServiceInfoHandler: serviceInfoHandler,
		ExperimentHandler:  experimentHandler,
		IngestHandler:      ingestHandler,
		NormalizeHandler:   normalizeHandler,
		QueryHandler:       queryHandler,
	})

	log.Info("Starting server...", "port", cfg.Port, "version", config.Version)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
