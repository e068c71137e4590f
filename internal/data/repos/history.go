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

type HistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AssessmentHistory) ([]*types.AssessmentHistory, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentHistory, error)
	// GetByAreaID returns snapshots for an area newest-first.
	GetByAreaID(ctx context.Context, tx *gorm.DB, areaID string) ([]*types.AssessmentHistory, error)
	// GetLatestByAssessmentID returns the most recent snapshot for an
	// assessment, or ErrNotFound when it has none.
	GetLatestByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.AssessmentHistory, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.AssessmentHistory, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{db: db, log: baseLog.With("repo", "HistoryRepo")}
}

func (r *historyRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AssessmentHistory) ([]*types.AssessmentHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.AssessmentHistory{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *historyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.AssessmentHistory
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

func (r *historyRepo) GetByAreaID(ctx context.Context, tx *gorm.DB, areaID string) ([]*types.AssessmentHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AssessmentHistory
	if areaID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("capability_area_id = ?", areaID).
		Order("snapshot_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *historyRepo) GetLatestByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.AssessmentHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.AssessmentHistory
	err := transaction.WithContext(ctx).
		Where("capability_assessment_id = ?", assessmentID).
		Order("snapshot_date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *historyRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.AssessmentHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AssessmentHistory
	if err := transaction.WithContext(ctx).
		Order("snapshot_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *historyRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.AssessmentHistory{}).Error; err != nil {
		return err
	}
	return nil
}
