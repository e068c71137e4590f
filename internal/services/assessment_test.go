package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	"github.com/orbitlabs/orbit-assess/internal/data/repos/testutil"
	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

func newTestAssessmentService(t *testing.T) (AssessmentService, repos.AssessmentRepo, repos.RatingRepo, repos.AttachmentRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	assessments := repos.NewAssessmentRepo(db, log)
	ratings := repos.NewRatingRepo(db, log)
	attachments := repos.NewAttachmentRepo(db, log)
	tags := NewTagService(db, log, repos.NewTagRepo(db, log), assessments)
	return NewAssessmentService(db, log, assessments, ratings, attachments, tags), assessments, ratings, attachments
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestAssessmentService(t)
	ctx := context.Background()
	areaID := uniqueName("area")

	first, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != types.StatusInProgress {
		t.Fatalf("expected in_progress, got %q", first.Status)
	}

	second, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("second call should return the existing record")
	}

	if _, err := svc.GetOrCreate(ctx, "d", "D", "", "X"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty area, got %v", err)
	}
}

func TestSaveRatingUpsertsByKey(t *testing.T) {
	svc, assessments, _, _ := newTestAssessmentService(t)
	ctx := context.Background()
	areaID := uniqueName("area")

	assessment, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	key := types.RatingKey{DimensionID: types.DimensionOutcomes, AspectID: "overall"}

	created, err := svc.SaveRating(ctx, assessment.ID, RatingInput{
		Key:          key,
		CurrentLevel: 2,
		Checklist:    map[string]bool{"level2-0": true},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	updated, err := svc.SaveRating(ctx, assessment.ID, RatingInput{
		Key:          key,
		CurrentLevel: 3,
		Notes:        "moved up",
	})
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("same key should update the existing row")
	}
	if updated.CurrentLevel != 3 || updated.Notes != "moved up" {
		t.Fatalf("content not updated: %+v", updated)
	}

	// Saving touches the assessment's updated time.
	reloaded, err := assessments.GetByID(ctx, nil, assessment.ID)
	if err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if !reloaded.UpdatedAt.After(assessment.UpdatedAt) {
		t.Fatal("assessment updatedAt not bumped")
	}

	if _, err := svc.SaveRating(ctx, assessment.ID, RatingInput{Key: key, CurrentLevel: 6}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for level 6, got %v", err)
	}
	if _, err := svc.SaveRating(ctx, assessment.ID, RatingInput{Key: types.RatingKey{}, CurrentLevel: 2}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty key, got %v", err)
	}
}

func TestSaveRatingLevelChangeClearsCarriedForward(t *testing.T) {
	svc, _, ratings, _ := newTestAssessmentService(t)
	ctx := context.Background()
	areaID := uniqueName("area")

	assessment, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	seeded := testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionRoles, 2)
	seeded.CarriedForward = true
	if err := ratings.Update(ctx, nil, seeded); err != nil {
		t.Fatalf("mark carried forward: %v", err)
	}
	key := types.RatingKey{DimensionID: types.DimensionRoles, AspectID: "overall"}

	// Re-saving at the same level keeps the carried-forward marker.
	same, err := svc.SaveRating(ctx, assessment.ID, RatingInput{Key: key, CurrentLevel: 2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !same.CarriedForward {
		t.Fatal("same-level save should keep carriedForward")
	}

	changed, err := svc.SaveRating(ctx, assessment.ID, RatingInput{Key: key, CurrentLevel: 3})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if changed.CarriedForward {
		t.Fatal("level change should clear carriedForward")
	}
}

func TestFinalizeComputesScoreAndRegistersTags(t *testing.T) {
	svc, _, _, _ := newTestAssessmentService(t)
	ctx := context.Background()
	areaID := uniqueName("area")
	tagName := uniqueName("final")

	assessment, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionOutcomes, 3)
	testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionRoles, 4)
	// Not assessed and not applicable stay out of the mean.
	testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionBusiness, types.LevelNotAssessed)
	testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionTechnology, types.LevelNotApplicable)

	finalized, err := svc.Finalize(ctx, assessment.ID, []string{tagName})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.Status != types.StatusFinalized || finalized.FinalizedAt == nil {
		t.Fatalf("not finalized: %+v", finalized)
	}
	if finalized.OverallScore == nil || *finalized.OverallScore != 3.5 {
		t.Fatalf("expected score 3.5, got %v", finalized.OverallScore)
	}
	if got := finalized.TagList(); len(got) != 1 || got[0] != tagName {
		t.Fatalf("tags not applied: %v", got)
	}

	tagRepo := repos.NewTagRepo(testutil.DB(t), testutil.Logger(t))
	tag, err := tagRepo.GetByName(ctx, nil, tagName)
	if err != nil {
		t.Fatalf("tag not registered: %v", err)
	}
	if tag.UsageCount != 1 {
		t.Fatalf("expected usage 1, got %d", tag.UsageCount)
	}
}

func TestFinalizeWithoutAssessedRatingsHasNoScore(t *testing.T) {
	svc, _, _, _ := newTestAssessmentService(t)
	ctx := context.Background()

	assessment, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", uniqueName("area"), "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionOutcomes, types.LevelNotAssessed)

	finalized, err := svc.Finalize(ctx, assessment.ID, nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.OverallScore != nil {
		t.Fatalf("expected no score, got %v", *finalized.OverallScore)
	}
	if finalized.Status != types.StatusFinalized {
		t.Fatalf("expected finalized, got %q", finalized.Status)
	}
}

func TestDeleteCascadesButKeepsHistory(t *testing.T) {
	svc, assessments, ratings, attachments := newTestAssessmentService(t)
	ctx := context.Background()
	areaID := uniqueName("area")

	assessment, err := svc.GetOrCreate(ctx, "domain-1", "Domain One", areaID, "Some Area")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rating := testutil.SeedRating(t, ctx, testutil.DB(t), assessment.ID, types.DimensionOutcomes, 3)
	now := time.Now().UTC()
	att := &types.Attachment{
		ID:                     uuid.New(),
		CapabilityAssessmentID: assessment.ID,
		OrbitRatingID:          rating.ID,
		FileName:               "evidence.pdf",
		UploadedAt:             now,
		CreatedAt:              now,
	}
	if _, err := attachments.Create(ctx, nil, []*types.Attachment{att}); err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	testutil.SeedHistory(t, ctx, testutil.DB(t), assessment.ID, areaID, 2.0, now.Add(-time.Hour))

	if err := svc.Delete(ctx, assessment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := assessments.GetByID(ctx, nil, assessment.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("assessment should be gone, got %v", err)
	}
	rows, err := ratings.GetByAssessmentID(ctx, nil, assessment.ID)
	if err != nil {
		t.Fatalf("get ratings: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("ratings should be gone, got %d", len(rows))
	}
	if _, err := attachments.GetByID(ctx, nil, att.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("attachment should be gone, got %v", err)
	}

	historyRepo := repos.NewHistoryRepo(testutil.DB(t), testutil.Logger(t))
	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history must survive delete, got %d entries", len(entries))
	}
}
