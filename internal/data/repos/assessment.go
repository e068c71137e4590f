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

type AssessmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CapabilityAssessment) ([]*types.CapabilityAssessment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CapabilityAssessment, error)
	// GetCurrentByAreaID resolves the natural key: at most one current
	// record exists per capability area. Returns ErrNotFound when the
	// area has never been assessed.
	GetCurrentByAreaID(ctx context.Context, tx *gorm.DB, areaID string) (*types.CapabilityAssessment, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.CapabilityAssessment, error)
	ListByDomainID(ctx context.Context, tx *gorm.DB, domainID string) ([]*types.CapabilityAssessment, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.CapabilityAssessment) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CapabilityAssessment) ([]*types.CapabilityAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.CapabilityAssessment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CapabilityAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.CapabilityAssessment
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

func (r *assessmentRepo) GetCurrentByAreaID(ctx context.Context, tx *gorm.DB, areaID string) (*types.CapabilityAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.CapabilityAssessment
	err := transaction.WithContext(ctx).
		Where("capability_area_id = ?", areaID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *assessmentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.CapabilityAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CapabilityAssessment
	if err := transaction.WithContext(ctx).
		Order("capability_domain_id, capability_area_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) ListByDomainID(ctx context.Context, tx *gorm.DB, domainID string) ([]*types.CapabilityAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CapabilityAssessment
	if domainID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_domain_id = ?", domainID).
		Order("capability_area_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) Update(ctx context.Context, tx *gorm.DB, row *types.CapabilityAssessment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Save, not Updates: merge logic must be able to write zero values
	// (cleared score, cleared finalized_at) in place.
	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *assessmentRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.CapabilityAssessment{}).Error; err != nil {
		return err
	}
	return nil
}
