package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/ingestion"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

// MatrixIngestRequest carries one multi-sample count matrix upload.
type MatrixIngestRequest struct {
	ExperimentResultID string
	Data               []byte
	// CountType marks the matrix as raw or pre-normalized; empty means raw.
	CountType domain.CountType
}

// SampleIngestRequest carries one single-sample detailed file upload.
type SampleIngestRequest struct {
	ExperimentResultID string
	SampleID           string
	Data               []byte
	Format             ingestion.Format
	Mapping            ingestion.ColumnMapping
}

type IngestionService interface {
	IngestMatrix(ctx context.Context, req MatrixIngestRequest) (int64, error)
	IngestSample(ctx context.Context, req SampleIngestRequest) (int64, error)
}

type ingestionService struct {
	db             *gorm.DB
	log            *logger.Logger
	experimentRepo expression.ExperimentRepo
	expressionRepo expression.GeneExpressionRepo
}

func NewIngestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	experimentRepo expression.ExperimentRepo,
	expressionRepo expression.GeneExpressionRepo,
) IngestionService {
	return &ingestionService{
		db:             db,
		log:            baseLog.With("service", "IngestionService"),
		experimentRepo: experimentRepo,
		expressionRepo: expressionRepo,
	}
}

// IngestMatrix parses and validates before any write happens; the upsert of
// the whole batch runs in one transaction.
func (s *ingestionService) IngestMatrix(ctx context.Context, req MatrixIngestRequest) (int64, error) {
	countType := req.CountType
	if countType == "" {
		countType = domain.CountRaw
	}
	if !countType.Valid() {
		return 0, apierr.BadRequest("unknown count type %q", string(req.CountType))
	}

	mt, err := ingestion.ParseMatrix(req.Data)
	if err != nil {
		return 0, err
	}
	if err := s.requireExperiment(ctx, req.ExperimentResultID); err != nil {
		return 0, err
	}

	records := ingestion.MatrixToExpressions(mt, req.ExperimentResultID, countType)
	return s.upsert(ctx, records)
}

func (s *ingestionService) IngestSample(ctx context.Context, req SampleIngestRequest) (int64, error) {
	if req.SampleID == "" {
		return 0, apierr.BadRequest("a sample id is required (parameter or upload file name)")
	}

	st, err := ingestion.ParseSample(req.Data, req.Format, req.Mapping)
	if err != nil {
		return 0, err
	}
	if err := s.requireExperiment(ctx, req.ExperimentResultID); err != nil {
		return 0, err
	}

	records := ingestion.SampleToExpressions(st, req.ExperimentResultID, req.SampleID)
	return s.upsert(ctx, records)
}

func (s *ingestionService) requireExperiment(ctx context.Context, id string) error {
	exp, err := s.experimentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if exp == nil {
		return apierr.NotFound("no experiment result found for provided ID")
	}
	return nil
}

func (s *ingestionService) upsert(ctx context.Context, records []*domain.GeneExpression) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.expressionRepo.Upsert(ctx, tx, records)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		s.log.Warn("Ingestion transaction rolled back", "error", err)
		return 0, err
	}
	s.log.Info("Ingestion committed", "records", affected)
	return affected, nil
}
