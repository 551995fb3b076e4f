package services

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/ingestion"
	"github.com/yungbote/transcriptomics-backend/internal/normalize"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

// NormalizeRequest asks for one normalization run over the raw counts of a
// stored experiment. GeneLengths is the uploaded two-column length table and
// is required for the length-aware methods (tpm, getmm).
type NormalizeRequest struct {
	ExperimentResultID string
	Method             domain.CountType
	GeneLengths        []byte
}

type NormalizationService interface {
	Normalize(ctx context.Context, req NormalizeRequest) (int64, error)
}

type normalizationService struct {
	db             *gorm.DB
	log            *logger.Logger
	expressionRepo expression.GeneExpressionRepo
	// parallel bounds the per-sample worker count inside the engine;
	// <= 0 means GOMAXPROCS.
	parallel int
}

func NewNormalizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	expressionRepo expression.GeneExpressionRepo,
	parallel int,
) NormalizationService {
	return &normalizationService{
		db:             db,
		log:            baseLog.With("service", "NormalizationService"),
		expressionRepo: expressionRepo,
		parallel:       parallel,
	}
}

func (s *normalizationService) Normalize(ctx context.Context, req NormalizeRequest) (int64, error) {
	var lengths map[string]float64
	switch req.Method {
	case domain.CountTPM, domain.CountGETMM:
		if len(req.GeneLengths) == 0 {
			return 0, apierr.BadRequest("gene lengths file is required for method %q", string(req.Method))
		}
		table, err := ingestion.ParseGeneLengths(req.GeneLengths)
		if err != nil {
			return 0, err
		}
		lengths = table.Lengths
	case domain.CountTMM:
	case domain.CountFPKM:
		return 0, apierr.NotImplemented("fpkm normalization is not implemented")
	default:
		return 0, apierr.BadRequest("unknown normalization method %q", string(req.Method))
	}

	raw, err := s.rawMatrix(ctx, req.ExperimentResultID)
	if err != nil {
		return 0, err
	}

	normalized, err := s.run(req.Method, raw, lengths)
	if err != nil {
		return 0, err
	}

	cells := normalized.Flatten()
	records := make([]*domain.GeneExpression, len(cells))
	for i, c := range cells {
		rec := &domain.GeneExpression{
			GeneCode:           c.Gene,
			SampleID:           c.Sample,
			ExperimentResultID: req.ExperimentResultID,
		}
		rec.SetCount(req.Method, c.Value)
		records[i] = rec
	}

	var affected int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Every produced cell must land on a row that already holds a raw
		// count; the matrix was pivoted from those rows, so a miss here means
		// they changed underneath us.
		if err := s.verifyRawCounts(ctx, tx, req.ExperimentResultID, cells); err != nil {
			return err
		}
		n, err := s.expressionRepo.Upsert(ctx, tx, records)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		s.log.Warn("Normalization transaction rolled back",
			"error", err, "experiment_result_id", req.ExperimentResultID, "method", string(req.Method))
		return 0, err
	}
	s.log.Info("Normalization committed",
		"experiment_result_id", req.ExperimentResultID, "method", string(req.Method), "records", affected)
	return affected, nil
}

func (s *normalizationService) run(method domain.CountType, m *normalize.Matrix, lengths map[string]float64) (*normalize.Matrix, error) {
	var (
		out *normalize.Matrix
		err error
	)
	switch method {
	case domain.CountTPM:
		out, err = normalize.TPM(m, lengths, s.parallel)
	case domain.CountTMM:
		var res *normalize.TMMResult
		res, err = normalize.TMM(m, normalize.DefaultTMMOptions(), s.parallel)
		if res != nil {
			out = res.Matrix
		}
	case domain.CountGETMM:
		var res *normalize.TMMResult
		res, err = normalize.GeTMM(m, lengths, normalize.DefaultTMMOptions(), s.parallel)
		if res != nil {
			out = res.Matrix
		}
	}
	if err != nil {
		if errors.Is(err, normalize.ErrNoCommonGenes) || errors.Is(err, normalize.ErrEmptyMatrix) {
			return nil, apierr.BadRequest("%s", err.Error())
		}
		return nil, apierr.BadRequest("normalization failed: %s", err.Error())
	}
	return out, nil
}

// rawMatrix loads every stored raw count for the experiment and pivots it
// into a dense gene × sample matrix. Samples are sorted so the reference
// selection inside TMM is deterministic across runs.
func (s *normalizationService) rawMatrix(ctx context.Context, experimentID string) (*normalize.Matrix, error) {
	rawType := domain.CountRaw
	rows, total, err := s.expressionRepo.Query(ctx, nil, expression.QueryFilter{
		Experiments: []string{experimentID},
		CountType:   &rawType,
	})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apierr.NotFound("no raw counts found for experiment %q", experimentID)
	}

	geneSet := map[string]struct{}{}
	sampleSet := map[string]struct{}{}
	values := make(map[[2]string]float64, len(rows))
	for _, r := range rows {
		geneSet[r.GeneCode] = struct{}{}
		sampleSet[r.SampleID] = struct{}{}
		values[[2]string{r.GeneCode, r.SampleID}] = float64(*r.RawCount)
	}

	genes := sortedKeys(geneSet)
	samples := sortedKeys(sampleSet)
	m := normalize.NewMatrix(genes, samples)
	for i, gene := range genes {
		for j, sample := range samples {
			v, ok := values[[2]string{gene, sample}]
			if !ok {
				return nil, apierr.BadRequest(
					"stored raw counts are not rectangular: gene %q has no raw count for sample %q", gene, sample)
			}
			m.Data[i][j] = v
		}
	}
	return m, nil
}

// verifyRawCounts re-checks, inside the write transaction, that every cell
// about to be written targets a row with a stored raw count.
func (s *normalizationService) verifyRawCounts(ctx context.Context, tx *gorm.DB, experimentID string, cells []normalize.Cell) error {
	rawType := domain.CountRaw
	rows, _, err := s.expressionRepo.Query(ctx, tx, expression.QueryFilter{
		Experiments: []string{experimentID},
		CountType:   &rawType,
	})
	if err != nil {
		return err
	}
	stored := make(map[[2]string]struct{}, len(rows))
	for _, r := range rows {
		stored[[2]string{r.GeneCode, r.SampleID}] = struct{}{}
	}
	for _, c := range cells {
		if _, ok := stored[[2]string{c.Gene, c.Sample}]; !ok {
			return apierr.NotFound("no raw count stored for gene %q, sample %q", c.Gene, c.Sample)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
