package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

// ExpressionRecord is one (gene, sample, experiment) hit projected onto a
// single requested count method.
type ExpressionRecord struct {
	GeneCode           string   `json:"gene_code"`
	SampleID           string   `json:"sample_id"`
	ExperimentResultID string   `json:"experiment_result_id"`
	Count              *float64 `json:"count"`
	Method             string   `json:"method"`
}

type QueryService interface {
	// Expressions returns the filtered rows projected onto f.CountType
	// (raw when nil) together with the pre-pagination total.
	Expressions(ctx context.Context, f expression.QueryFilter) ([]ExpressionRecord, int64, error)
	// ExpressionsAll pages through every stored row with all count columns
	// intact. An empty store yields an empty page, not an error.
	ExpressionsAll(ctx context.Context, p expression.Pagination) ([]*domain.GeneExpression, int64, error)
}

type queryService struct {
	db             *gorm.DB
	log            *logger.Logger
	expressionRepo expression.GeneExpressionRepo
}

func NewQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	expressionRepo expression.GeneExpressionRepo,
) QueryService {
	return &queryService{
		db:             db,
		log:            baseLog.With("service", "QueryService"),
		expressionRepo: expressionRepo,
	}
}

func (s *queryService) Expressions(ctx context.Context, f expression.QueryFilter) ([]ExpressionRecord, int64, error) {
	method := domain.CountRaw
	if f.CountType != nil {
		if !f.CountType.Valid() {
			return nil, 0, apierr.BadRequest("unknown count method %q", string(*f.CountType))
		}
		method = *f.CountType
	} else {
		f.CountType = &method
	}

	rows, total, err := s.expressionRepo.Query(ctx, nil, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, apierr.NotFound("no expression records found for the provided parameters")
	}

	out := make([]ExpressionRecord, len(rows))
	for i, r := range rows {
		out[i] = ExpressionRecord{
			GeneCode:           r.GeneCode,
			SampleID:           r.SampleID,
			ExperimentResultID: r.ExperimentResultID,
			Count:              r.Count(method),
			Method:             string(method),
		}
	}
	return out, total, nil
}

func (s *queryService) ExpressionsAll(ctx context.Context, p expression.Pagination) ([]*domain.GeneExpression, int64, error) {
	rows, total, err := s.expressionRepo.Query(ctx, nil, expression.QueryFilter{Pagination: p})
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []*domain.GeneExpression{}
	}
	return rows, total, nil
}
