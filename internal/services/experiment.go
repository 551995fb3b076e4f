package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

type ExperimentService interface {
	Create(ctx context.Context, exp *domain.ExperimentResult) error
	List(ctx context.Context) ([]*domain.ExperimentResult, error)
	Get(ctx context.Context, id string) (*domain.ExperimentResult, error)
	UpdateAssembly(ctx context.Context, id string, assemblyID, assemblyName *string) error
	Delete(ctx context.Context, id string) error
	Samples(ctx context.Context, id string, p expression.Pagination) ([]string, int64, error)
	Features(ctx context.Context, id string, p expression.Pagination) ([]string, int64, error)
}

type experimentService struct {
	db             *gorm.DB
	log            *logger.Logger
	experimentRepo expression.ExperimentRepo
	expressionRepo expression.GeneExpressionRepo
}

func NewExperimentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	experimentRepo expression.ExperimentRepo,
	expressionRepo expression.GeneExpressionRepo,
) ExperimentService {
	return &experimentService{
		db:             db,
		log:            baseLog.With("service", "ExperimentService"),
		experimentRepo: experimentRepo,
		expressionRepo: expressionRepo,
	}
}

func (s *experimentService) Create(ctx context.Context, exp *domain.ExperimentResult) error {
	if err := s.experimentRepo.Create(ctx, nil, exp); err != nil {
		s.log.Warn("Create experiment failed", "error", err, "experiment_result_id", exp.ExperimentResultID)
		return err
	}
	return nil
}

func (s *experimentService) List(ctx context.Context) ([]*domain.ExperimentResult, error) {
	return s.experimentRepo.List(ctx, nil)
}

func (s *experimentService) Get(ctx context.Context, id string) (*domain.ExperimentResult, error) {
	exp, err := s.experimentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, apierr.NotFound("no experiment result found for id %s", id)
	}
	return exp, nil
}

func (s *experimentService) UpdateAssembly(ctx context.Context, id string, assemblyID, assemblyName *string) error {
	return s.experimentRepo.UpdateAssembly(ctx, nil, id, assemblyID, assemblyName)
}

// Delete removes the experiment together with its expression rows in one
// transaction.
func (s *experimentService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.experimentRepo.Delete(ctx, tx, id)
	})
}

func (s *experimentService) Samples(ctx context.Context, id string, p expression.Pagination) ([]string, int64, error) {
	samples, total, err := s.expressionRepo.DistinctSamples(ctx, nil, id, p)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, apierr.NotFound("no samples found for experiment %q", id)
	}
	return samples, total, nil
}

func (s *experimentService) Features(ctx context.Context, id string, p expression.Pagination) ([]string, int64, error) {
	features, total, err := s.expressionRepo.DistinctGenes(ctx, nil, id, p)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, apierr.NotFound("no features found for experiment %q", id)
	}
	return features, total, nil
}
