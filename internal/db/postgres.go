package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/config"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg *config.Config, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	serviceLog.Info("Connecting to Postgres...", "host", cfg.PostgresHost, "db", cfg.PostgresName)
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// AutoMigrateAll creates the two tables and the cascade from expressions to
// their experiment. Deleting an experiment removes its expression rows.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(
		&domain.ExperimentResult{},
		&domain.GeneExpression{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	if !s.db.Migrator().HasConstraint(&domain.GeneExpression{}, "fk_gene_expressions_experiment") {
		if err := s.db.Exec(`
			ALTER TABLE "gene_expressions"
			ADD CONSTRAINT "fk_gene_expressions_experiment"
			FOREIGN KEY ("experiment_result_id")
			REFERENCES "experiment_results"("experiment_result_id")
			ON DELETE CASCADE
		`).Error; err != nil {
			return fmt.Errorf("failed to add fk_gene_expressions_experiment: %w", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
