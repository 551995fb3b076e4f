package expression

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

// Pagination is a 1-based page request. A zero value means "no pagination".
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) enabled() bool { return p.Page > 0 && p.PageSize > 0 }

// QueryFilter narrows expression queries. Empty slices match everything;
// a non-nil CountType restricts to rows where that column is non-null.
type QueryFilter struct {
	Genes       []string
	Experiments []string
	SampleIDs   []string
	CountType   *domain.CountType
	Pagination  Pagination
}

type GeneExpressionRepo interface {
	// Upsert merges rows on the (gene, sample, experiment) key: a column is
	// overwritten only when the incoming row carries a non-null value for it.
	Upsert(ctx context.Context, tx *gorm.DB, rows []*domain.GeneExpression) (int64, error)
	Query(ctx context.Context, tx *gorm.DB, f QueryFilter) ([]*domain.GeneExpression, int64, error)
	DistinctSamples(ctx context.Context, tx *gorm.DB, experimentID string, p Pagination) ([]string, int64, error)
	DistinctGenes(ctx context.Context, tx *gorm.DB, experimentID string, p Pagination) ([]string, int64, error)
}

type geneExpressionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneExpressionRepo(db *gorm.DB, baseLog *logger.Logger) GeneExpressionRepo {
	return &geneExpressionRepo{db: db, log: baseLog.With("repo", "GeneExpressionRepo")}
}

func (r *geneExpressionRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

const upsertBatchSize = 500

func (r *geneExpressionRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*domain.GeneExpression) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	// COALESCE against the stored row keeps every field the incoming row
	// does not carry. Valid on both postgres and sqlite.
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "gene_code"},
			{Name: "sample_id"},
			{Name: "experiment_result_id"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"raw_count":   gorm.Expr("COALESCE(excluded.raw_count, gene_expressions.raw_count)"),
			"tpm_count":   gorm.Expr("COALESCE(excluded.tpm_count, gene_expressions.tpm_count)"),
			"tmm_count":   gorm.Expr("COALESCE(excluded.tmm_count, gene_expressions.tmm_count)"),
			"getmm_count": gorm.Expr("COALESCE(excluded.getmm_count, gene_expressions.getmm_count)"),
			"fpkm_count":  gorm.Expr("COALESCE(excluded.fpkm_count, gene_expressions.fpkm_count)"),
		}),
	}
	err := r.handle(tx).WithContext(ctx).
		Clauses(onConflict).
		CreateInBatches(rows, upsertBatchSize).Error
	if err != nil {
		r.log.Error("Failed to upsert gene expression rows", "error", err)
		return 0, apierr.Internal(err)
	}
	r.log.Info("Upserted gene expression rows", "count", len(rows))
	return int64(len(rows)), nil
}

func (r *geneExpressionRepo) applyFilter(t *gorm.DB, f QueryFilter) *gorm.DB {
	if len(f.Genes) > 0 {
		t = t.Where("gene_code IN ?", f.Genes)
	}
	if len(f.Experiments) > 0 {
		t = t.Where("experiment_result_id IN ?", f.Experiments)
	}
	if len(f.SampleIDs) > 0 {
		t = t.Where("sample_id IN ?", f.SampleIDs)
	}
	if f.CountType != nil {
		t = t.Where(f.CountType.Column() + " IS NOT NULL")
	}
	return t
}

func (r *geneExpressionRepo) Query(ctx context.Context, tx *gorm.DB, f QueryFilter) ([]*domain.GeneExpression, int64, error) {
	var total int64
	if err := r.applyFilter(r.handle(tx).WithContext(ctx).Model(&domain.GeneExpression{}), f).
		Count(&total).Error; err != nil {
		return nil, 0, apierr.Internal(err)
	}

	t := r.applyFilter(r.handle(tx).WithContext(ctx).Model(&domain.GeneExpression{}), f).
		Order("gene_code ASC, sample_id ASC")
	if f.Pagination.enabled() {
		t = t.Limit(f.Pagination.PageSize).
			Offset((f.Pagination.Page - 1) * f.Pagination.PageSize)
	}

	var out []*domain.GeneExpression
	if err := t.Find(&out).Error; err != nil {
		return nil, 0, apierr.Internal(err)
	}
	return out, total, nil
}

func (r *geneExpressionRepo) distinctColumn(ctx context.Context, tx *gorm.DB, column, experimentID string, p Pagination) ([]string, int64, error) {
	base := func() *gorm.DB {
		return r.handle(tx).WithContext(ctx).
			Model(&domain.GeneExpression{}).
			Where("experiment_result_id = ?", experimentID).
			Distinct(column)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, apierr.Internal(err)
	}

	t := base().Order(column + " ASC")
	if p.enabled() {
		t = t.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
	}

	var out []string
	if err := t.Pluck(column, &out).Error; err != nil {
		return nil, 0, apierr.Internal(err)
	}
	return out, total, nil
}

func (r *geneExpressionRepo) DistinctSamples(ctx context.Context, tx *gorm.DB, experimentID string, p Pagination) ([]string, int64, error) {
	return r.distinctColumn(ctx, tx, "sample_id", experimentID, p)
}

func (r *geneExpressionRepo) DistinctGenes(ctx context.Context, tx *gorm.DB, experimentID string, p Pagination) ([]string, int64, error) {
	return r.distinctColumn(ctx, tx, "gene_code", experimentID, p)
}
