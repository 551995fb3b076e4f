package expression

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

type ExperimentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exp *domain.ExperimentResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.ExperimentResult, error)
	List(ctx context.Context, tx *gorm.DB) ([]*domain.ExperimentResult, error)
	UpdateAssembly(ctx context.Context, tx *gorm.DB, id string, assemblyID, assemblyName *string) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type experimentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExperimentRepo(db *gorm.DB, baseLog *logger.Logger) ExperimentRepo {
	return &experimentRepo{db: db, log: baseLog.With("repo", "ExperimentRepo")}
}

func (r *experimentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *experimentRepo) Create(ctx context.Context, tx *gorm.DB, exp *domain.ExperimentResult) error {
	if exp == nil || exp.ExperimentResultID == "" {
		return apierr.BadRequest("experiment_result_id is required")
	}
	err := r.handle(tx).WithContext(ctx).Create(exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.Conflict("experiment_result_id=%s already exists", exp.ExperimentResultID)
		}
		return apierr.Internal(err)
	}
	r.log.Info("Created experiment_results row", "experiment_result_id", exp.ExperimentResultID)
	return nil
}

func (r *experimentRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.ExperimentResult, error) {
	var exp domain.ExperimentResult
	err := r.handle(tx).WithContext(ctx).
		Where("experiment_result_id = ?", id).
		First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apierr.Internal(err)
	}
	return &exp, nil
}

func (r *experimentRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.ExperimentResult, error) {
	var out []*domain.ExperimentResult
	err := r.handle(tx).WithContext(ctx).
		Order("experiment_result_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

// UpdateAssembly touches only the fields the caller supplied; a nil pointer
// leaves the stored value alone.
func (r *experimentRepo) UpdateAssembly(ctx context.Context, tx *gorm.DB, id string, assemblyID, assemblyName *string) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if assemblyID != nil {
		updates["assembly_id"] = assemblyID
	}
	if assemblyName != nil {
		updates["assembly_name"] = assemblyName
	}
	res := r.handle(tx).WithContext(ctx).
		Model(&domain.ExperimentResult{}).
		Where("experiment_result_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return apierr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("no experiment result found for id %s", id)
	}
	return nil
}

// Delete removes the experiment and its expression rows. The expression
// delete is explicit rather than relying on the FK cascade so the behavior
// is identical on the sqlite test harness.
func (r *experimentRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	t := r.handle(tx).WithContext(ctx)
	if err := t.Where("experiment_result_id = ?", id).
		Delete(&domain.GeneExpression{}).Error; err != nil {
		return apierr.Internal(err)
	}
	res := t.Where("experiment_result_id = ?", id).Delete(&domain.ExperimentResult{})
	if res.Error != nil {
		return apierr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("no experiment result found for id %s", id)
	}
	r.log.Info("Deleted experiment_results row", "experiment_result_id", id)
	return nil
}
