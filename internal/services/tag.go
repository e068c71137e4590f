package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// TagService maintains the tag registry. Assessments reference tags
// by name only (weak reference), so renames must rewrite every
// referencing assessment in the same transaction.
type TagService interface {
	// EnsureTags registers or touches every name: first use creates
	// the tag, every further use bumps usage count and last-used.
	// Duplicate names in the input are deduplicated.
	EnsureTags(ctx context.Context, tx *gorm.DB, names []string) error
	// RenameTag renames a tag and rewrites the tag arrays of all
	// referencing assessments. Returns how many assessments changed.
	RenameTag(ctx context.Context, oldName, newName string) (int, error)
	// CleanupUnused deletes tags whose usage count is zero and
	// returns the deleted names.
	CleanupUnused(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]*types.Tag, error)
}

type tagService struct {
	db          *gorm.DB
	log         *logger.Logger
	tags        repos.TagRepo
	assessments repos.AssessmentRepo
}

func NewTagService(db *gorm.DB, baseLog *logger.Logger, tags repos.TagRepo, assessments repos.AssessmentRepo) TagService {
	return &tagService{
		db:          db,
		log:         baseLog.With("service", "TagService"),
		tags:        tags,
		assessments: assessments,
	}
}

func (s *tagService) EnsureTags(ctx context.Context, tx *gorm.DB, names []string) error {
	now := time.Now().UTC()
	for _, name := range dedupe(names) {
		existing, err := s.tags.GetByName(ctx, tx, name)
		if errors.Is(err, apperrors.ErrNotFound) {
			_, err = s.tags.Create(ctx, tx, []*types.Tag{{
				ID:         uuid.New(),
				Name:       name,
				UsageCount: 1,
				LastUsed:   now,
				CreatedAt:  now,
			}})
			if err != nil {
				return fmt.Errorf("create tag %q: %w", name, err)
			}
			continue
		}
		if err != nil {
			return err
		}
		existing.UsageCount++
		existing.LastUsed = now
		if err := s.tags.Update(ctx, tx, existing); err != nil {
			return fmt.Errorf("touch tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *tagService) RenameTag(ctx context.Context, oldName, newName string) (int, error) {
	if oldName == "" || newName == "" || oldName == newName {
		return 0, apperrors.ErrInvalidArgument
	}

	rewritten := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tag, err := s.tags.GetByName(ctx, tx, oldName)
		if err != nil {
			return err
		}
		if _, err := s.tags.GetByName(ctx, tx, newName); err == nil {
			return fmt.Errorf("tag %q already exists: %w", newName, apperrors.ErrInvalidArgument)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		tag.Name = newName
		if err := s.tags.Update(ctx, tx, tag); err != nil {
			return err
		}

		all, err := s.assessments.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		for _, a := range all {
			tags := a.TagList()
			changed := false
			for i, t := range tags {
				if t == oldName {
					tags[i] = newName
					changed = true
				}
			}
			if !changed {
				continue
			}
			a.SetTags(tags)
			if err := s.assessments.Update(ctx, tx, a); err != nil {
				return err
			}
			rewritten++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("tag renamed", "old", oldName, "new", newName, "assessments_rewritten", rewritten)
	return rewritten, nil
}

func (s *tagService) CleanupUnused(ctx context.Context) ([]string, error) {
	var removed []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		all, err := s.tags.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		for _, t := range all {
			if t.UsageCount == 0 {
				removed = append(removed, t.Name)
			}
		}
		return s.tags.DeleteByNames(ctx, tx, removed)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *tagService) List(ctx context.Context) ([]*types.Tag, error) {
	return s.tags.ListAll(ctx, nil)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
