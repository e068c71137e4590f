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

type AttachmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Attachment) ([]*types.Attachment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attachment, error)
	GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Attachment, error)
	GetByRatingID(ctx context.Context, tx *gorm.DB, ratingID uuid.UUID) ([]*types.Attachment, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Attachment, error)
	DeleteByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type attachmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttachmentRepo(db *gorm.DB, baseLog *logger.Logger) AttachmentRepo {
	return &attachmentRepo{db: db, log: baseLog.With("repo", "AttachmentRepo")}
}

func (r *attachmentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Attachment) ([]*types.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Attachment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Attachment
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

func (r *attachmentRepo) GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attachment
	if assessmentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_assessment_id = ?", assessmentID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attachmentRepo) GetByRatingID(ctx context.Context, tx *gorm.DB, ratingID uuid.UUID) ([]*types.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attachment
	if ratingID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("orbit_rating_id = ?", ratingID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attachmentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attachment
	if err := transaction.WithContext(ctx).
		Order("uploaded_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attachmentRepo) DeleteByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if assessmentID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_assessment_id = ?", assessmentID).
		Delete(&types.Attachment{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *attachmentRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Attachment{}).Error; err != nil {
		return err
	}
	return nil
}
