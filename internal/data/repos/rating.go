package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

type RatingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.OrbitRating) ([]*types.OrbitRating, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.OrbitRating, error)
	GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.OrbitRating, error)
	// GetByKey is the compound-key lookup over
	// (assessment, dimension, sub-dimension, aspect).
	GetByKey(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, key types.RatingKey) (*types.OrbitRating, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.OrbitRating) error
	DeleteByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

func (r *ratingRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.OrbitRating) ([]*types.OrbitRating, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.OrbitRating{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ratingRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.OrbitRating, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.OrbitRating
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ratingRepo) GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.OrbitRating, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.OrbitRating
	if assessmentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_assessment_id = ?", assessmentID).
		Order("dimension_id, sub_dimension_id, aspect_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ratingRepo) GetByKey(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, key types.RatingKey) (*types.OrbitRating, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.OrbitRating
	err := transaction.WithContext(ctx).
		Where(
			"capability_assessment_id = ? AND dimension_id = ? AND sub_dimension_id = ? AND aspect_id = ?",
			assessmentID, key.DimensionID, key.SubDimensionID, key.AspectID,
		).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ratingRepo) Update(ctx context.Context, tx *gorm.DB, row *types.OrbitRating) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *ratingRepo) DeleteByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if assessmentID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_assessment_id = ?", assessmentID).
		Delete(&types.OrbitRating{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *ratingRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.OrbitRating{}).Error; err != nil {
		return err
	}
	return nil
}
