// Package history builds and consumes immutable snapshots of
// finalized assessments. A snapshot is taken when an assessment is
// reopened for editing or when an import supersedes a local record;
// it is consumed (destructively) by RevertEdit.
package history

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

type Archiver struct {
	db          *gorm.DB
	log         *logger.Logger
	assessments repos.AssessmentRepo
	ratings     repos.RatingRepo
	history     repos.HistoryRepo
}

func NewArchiver(db *gorm.DB, baseLog *logger.Logger, assessments repos.AssessmentRepo, ratings repos.RatingRepo, historyRepo repos.HistoryRepo) *Archiver {
	return &Archiver{
		db:          db,
		log:         baseLog.With("service", "Archiver"),
		assessments: assessments,
		ratings:     ratings,
		history:     historyRepo,
	}
}

// CreateSnapshot builds the immutable history row for a finalized
// assessment. Only finalized-with-score assessments are archived.
//
// Per-group dimension means are stored unrounded, unlike the stored
// overallScore which is snapped to one decimal at finalize time. The
// snapshot mean is a diagnostic value; do not "fix" the asymmetry.
func CreateSnapshot(assessment *types.CapabilityAssessment, ratings []*types.OrbitRating) (*types.AssessmentHistory, error) {
	if assessment == nil {
		return nil, apperrors.ErrInvalidArgument
	}
	if !assessment.HasScore() {
		return nil, fmt.Errorf("archive %s: %w", assessment.CapabilityAreaID, apperrors.ErrNotFinalized)
	}

	snapshotDate := assessment.UpdatedAt
	if assessment.FinalizedAt != nil {
		snapshotDate = *assessment.FinalizedAt
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	snaps := make([]types.RatingSnapshot, 0, len(ratings))
	for _, r := range ratings {
		if r == nil {
			continue
		}
		if r.CountsTowardScore() {
			key := r.DimensionGroupKey()
			sums[key] += float64(r.CurrentLevel)
			counts[key]++
		}
		// Full denormalized copy of the rating content; attachment ids
		// are deliberately left out (attachments are not versioned).
		snaps = append(snaps, types.RatingSnapshot{
			DimensionID:    r.DimensionID,
			SubDimensionID: r.SubDimensionID,
			AspectID:       r.AspectID,
			CurrentLevel:   r.CurrentLevel,
			TargetLevel:    r.TargetLevel,
			Notes:          r.Notes,
			Barriers:       r.Barriers,
			Plans:          r.Plans,
			ChecklistState: r.ChecklistMap(),
		})
	}

	dimScores := make(map[string]float64, len(sums))
	for key, sum := range sums {
		dimScores[key] = sum / float64(counts[key])
	}

	h := &types.AssessmentHistory{
		ID:                     uuid.New(),
		CapabilityAssessmentID: assessment.ID,
		CapabilityAreaID:       assessment.CapabilityAreaID,
		SnapshotDate:           snapshotDate,
		OverallScore:           *assessment.OverallScore,
		CreatedAt:              time.Now().UTC(),
	}
	h.SetTags(assessment.TagList())
	h.SetDimensionScores(dimScores)
	h.SetRatingSnapshots(snaps)
	return h, nil
}

// Archive snapshots the assessment and persists the row inside the
// caller's transaction.
func (a *Archiver) Archive(ctx context.Context, tx *gorm.DB, assessment *types.CapabilityAssessment, ratings []*types.OrbitRating) (*types.AssessmentHistory, error) {
	snap, err := CreateSnapshot(assessment, ratings)
	if err != nil {
		return nil, err
	}
	if _, err := a.history.Create(ctx, tx, []*types.AssessmentHistory{snap}); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	return snap, nil
}

// ReopenForEdit moves a finalized assessment back to in_progress:
// snapshot first, then mark every rating carried-forward so the UI
// can ask for re-confirmation of the copied levels.
func (a *Archiver) ReopenForEdit(ctx context.Context, assessmentID uuid.UUID) (*types.CapabilityAssessment, error) {
	var reopened *types.CapabilityAssessment
	err := a.db.Transaction(func(tx *gorm.DB) error {
		assessment, err := a.assessments.GetByID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}
		if !assessment.IsFinalized() {
			return fmt.Errorf("reopen %s: %w", assessment.CapabilityAreaID, apperrors.ErrNotFinalized)
		}

		ratings, err := a.ratings.GetByAssessmentID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}
		if assessment.HasScore() {
			if _, err := a.Archive(ctx, tx, assessment, ratings); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		assessment.Status = types.StatusInProgress
		assessment.UpdatedAt = now
		if err := a.assessments.Update(ctx, tx, assessment); err != nil {
			return err
		}

		for _, r := range ratings {
			r.CarriedForward = true
			r.UpdatedAt = now
			if err := a.ratings.Update(ctx, tx, r); err != nil {
				return err
			}
		}
		reopened = assessment
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("assessment reopened for edit", "assessment_id", assessmentID.String())
	return reopened, nil
}

// RevertEdit restores the most recent snapshot of the assessment and
// deletes it. Destructive: the in-progress edits are discarded and no
// counter-snapshot is taken. With no history available the assessment
// is simply marked finalized again and its data left untouched.
func (a *Archiver) RevertEdit(ctx context.Context, assessmentID uuid.UUID) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		assessment, err := a.assessments.GetByID(ctx, tx, assessmentID)
		if err != nil {
			return err
		}

		snap, err := a.history.GetLatestByAssessmentID(ctx, tx, assessmentID)
		if errors.Is(err, apperrors.ErrNotFound) {
			assessment.Status = types.StatusFinalized
			assessment.UpdatedAt = time.Now().UTC()
			return a.assessments.Update(ctx, tx, assessment)
		}
		if err != nil {
			return err
		}

		if err := a.ratings.DeleteByAssessmentID(ctx, tx, assessmentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		restored := make([]*types.OrbitRating, 0, len(snap.RatingSnapshots()))
		for _, rs := range snap.RatingSnapshots() {
			r := &types.OrbitRating{
				ID:                     uuid.New(),
				CapabilityAssessmentID: assessmentID,
				DimensionID:            rs.DimensionID,
				SubDimensionID:         rs.SubDimensionID,
				AspectID:               rs.AspectID,
				CurrentLevel:           rs.CurrentLevel,
				TargetLevel:            rs.TargetLevel,
				Notes:                  rs.Notes,
				Barriers:               rs.Barriers,
				Plans:                  rs.Plans,
				CarriedForward:         false,
				CreatedAt:              now,
				UpdatedAt:              now,
			}
			r.SetChecklist(rs.ChecklistState)
			restored = append(restored, r)
		}
		if _, err := a.ratings.Create(ctx, tx, restored); err != nil {
			return err
		}

		score := snap.OverallScore
		finalizedAt := snap.SnapshotDate
		assessment.Status = types.StatusFinalized
		assessment.SetTags(snap.TagList())
		assessment.OverallScore = &score
		assessment.FinalizedAt = &finalizedAt
		assessment.UpdatedAt = now
		if err := a.assessments.Update(ctx, tx, assessment); err != nil {
			return err
		}

		return a.history.DeleteByIDs(ctx, tx, []uuid.UUID{snap.ID})
	})
}
