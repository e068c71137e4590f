package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Tag, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Tag) error
	DeleteByNames(ctx context.Context, tx *gorm.DB, names []string) error
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Tag{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tagRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Tag
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tagRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Tag
	if err := transaction.WithContext(ctx).
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *tagRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Tag) error {
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

func (r *tagRepo) DeleteByNames(ctx context.Context, tx *gorm.DB, names []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(names) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("name IN ?", names).
		Delete(&types.Tag{}).Error; err != nil {
		return err
	}
	return nil
}
