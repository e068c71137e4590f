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
	"github.com/orbitlabs/orbit-assess/internal/scoring"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// RatingInput is one rating write: the compound key plus content.
type RatingInput struct {
	Key          types.RatingKey
	CurrentLevel int
	TargetLevel  *int
	Notes        string
	Barriers     string
	Plans        string
	Checklist    map[string]bool
}

type AssessmentService interface {
	// GetOrCreate resolves the current record for an area, creating
	// an in-progress one on first touch.
	GetOrCreate(ctx context.Context, domainID, domainName, areaID, areaName string) (*types.CapabilityAssessment, error)
	// SaveRating upserts by the compound natural key. Changing the
	// level of a carried-forward rating re-confirms it.
	SaveRating(ctx context.Context, assessmentID uuid.UUID, input RatingInput) (*types.OrbitRating, error)
	// Finalize computes and stores the overall score (1-decimal mean
	// over ratings with level > 0, absent when none qualify), stamps
	// finalizedAt and registers the supplied tags.
	Finalize(ctx context.Context, assessmentID uuid.UUID, tags []string) (*types.CapabilityAssessment, error)
	// Delete removes the assessment with its ratings and attachment
	// rows in one transaction. History entries stay: they are
	// independent copies.
	Delete(ctx context.Context, assessmentID uuid.UUID) error
}

type assessmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	assessments repos.AssessmentRepo
	ratings     repos.RatingRepo
	attachments repos.AttachmentRepo
	tags        TagService
}

func NewAssessmentService(db *gorm.DB, baseLog *logger.Logger, assessments repos.AssessmentRepo, ratings repos.RatingRepo, attachments repos.AttachmentRepo, tags TagService) AssessmentService {
	return &assessmentService{
		db:          db,
		log:         baseLog.With("service", "AssessmentService"),
		assessments: assessments,
		ratings:     ratings,
		attachments: attachments,
		tags:        tags,
	}
}

func (s *assessmentService) GetOrCreate(ctx context.Context, domainID, domainName, areaID, areaName string) (*types.CapabilityAssessment, error) {
	if areaID == "" {
		return nil, apperrors.ErrInvalidArgument
	}

	existing, err := s.assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	created := &types.CapabilityAssessment{
		ID:                 uuid.New(),
		CapabilityDomainID: domainID,
		DomainName:         domainName,
		CapabilityAreaID:   areaID,
		AreaName:           areaName,
		Status:             types.StatusInProgress,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created.SetTags(nil)
	if _, err := s.assessments.Create(ctx, nil, []*types.CapabilityAssessment{created}); err != nil {
		return nil, fmt.Errorf("create assessment for area %q: %w", areaID, err)
	}
	return created, nil
}

func (s *assessmentService) SaveRating(ctx context.Context, assessmentID uuid.UUID, input RatingInput) (*types.OrbitRating, error) {
	if input.CurrentLevel < types.LevelNotApplicable || input.CurrentLevel > 5 {
		return nil, fmt.Errorf("level %d out of range: %w", input.CurrentLevel, apperrors.ErrInvalidArgument)
	}
	if input.Key.DimensionID == "" || input.Key.AspectID == "" {
		return nil, apperrors.ErrInvalidArgument
	}

	var saved *types.OrbitRating
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assessment, err := s.assessments.GetByID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		existing, err := s.ratings.GetByKey(ctx, tx, assessmentID, input.Key)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			row := &types.OrbitRating{
				ID:                     uuid.New(),
				CapabilityAssessmentID: assessmentID,
				DimensionID:            input.Key.DimensionID,
				SubDimensionID:         input.Key.SubDimensionID,
				AspectID:               input.Key.AspectID,
				CurrentLevel:           input.CurrentLevel,
				TargetLevel:            input.TargetLevel,
				Notes:                  input.Notes,
				Barriers:               input.Barriers,
				Plans:                  input.Plans,
				CreatedAt:              now,
				UpdatedAt:              now,
			}
			row.SetChecklist(input.Checklist)
			if _, err := s.ratings.Create(ctx, tx, []*types.OrbitRating{row}); err != nil {
				return err
			}
			saved = row
		case err != nil:
			return err
		default:
			if existing.CarriedForward && existing.CurrentLevel != input.CurrentLevel {
				existing.CarriedForward = false
			}
			existing.CurrentLevel = input.CurrentLevel
			existing.TargetLevel = input.TargetLevel
			existing.Notes = input.Notes
			existing.Barriers = input.Barriers
			existing.Plans = input.Plans
			existing.SetChecklist(input.Checklist)
			existing.UpdatedAt = now
			if err := s.ratings.Update(ctx, tx, existing); err != nil {
				return err
			}
			saved = existing
		}

		assessment.UpdatedAt = now
		return s.assessments.Update(ctx, tx, assessment)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *assessmentService) Finalize(ctx context.Context, assessmentID uuid.UUID, tags []string) (*types.CapabilityAssessment, error) {
	var finalized *types.CapabilityAssessment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assessment, err := s.assessments.GetByID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}
		ratings, err := s.ratings.GetByAssessmentID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		assessment.Status = types.StatusFinalized
		assessment.OverallScore = scoring.FinalizeScore(ratings)
		assessment.FinalizedAt = &now
		assessment.UpdatedAt = now
		assessment.SetTags(tags)
		if err := s.assessments.Update(ctx, tx, assessment); err != nil {
			return err
		}
		if err := s.tags.EnsureTags(ctx, tx, tags); err != nil {
			return err
		}
		finalized = assessment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("assessment finalized",
		"assessment_id", assessmentID.String(),
		"has_score", finalized.HasScore())
	return finalized, nil
}

func (s *assessmentService) Delete(ctx context.Context, assessmentID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.assessments.GetByID(ctx, tx, assessmentID); err != nil {
			return err
		}
		if err := s.attachments.DeleteByAssessmentID(ctx, tx, assessmentID); err != nil {
			return err
		}
		if err := s.ratings.DeleteByAssessmentID(ctx, tx, assessmentID); err != nil {
			return err
		}
		return s.assessments.DeleteByIDs(ctx, tx, []uuid.UUID{assessmentID})
	})
}
