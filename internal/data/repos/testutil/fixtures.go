package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, areaID string, updatedAt time.Time) *types.CapabilityAssessment {
	tb.Helper()
	a := &types.CapabilityAssessment{
		ID:                 uuid.New(),
		CapabilityDomainID: "domain-1",
		DomainName:         "Domain One",
		CapabilityAreaID:   areaID,
		AreaName:           "Area " + areaID,
		Status:             types.StatusInProgress,
		CreatedAt:          updatedAt,
		UpdatedAt:          updatedAt,
	}
	a.SetTags(nil)
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

func SeedFinalizedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, areaID string, score float64, finalizedAt time.Time) *types.CapabilityAssessment {
	tb.Helper()
	a := &types.CapabilityAssessment{
		ID:                 uuid.New(),
		CapabilityDomainID: "domain-1",
		DomainName:         "Domain One",
		CapabilityAreaID:   areaID,
		AreaName:           "Area " + areaID,
		Status:             types.StatusFinalized,
		OverallScore:       &score,
		CreatedAt:          finalizedAt,
		UpdatedAt:          finalizedAt,
		FinalizedAt:        &finalizedAt,
	}
	a.SetTags([]string{"seeded"})
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed finalized assessment: %v", err)
	}
	return a
}

func SeedRating(tb testing.TB, ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, dimensionID string, level int) *types.OrbitRating {
	tb.Helper()
	now := time.Now().UTC()
	r := &types.OrbitRating{
		ID:                     uuid.New(),
		CapabilityAssessmentID: assessmentID,
		DimensionID:            dimensionID,
		AspectID:               "overall",
		CurrentLevel:           level,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
	return r
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, usageCount int) *types.Tag {
	tb.Helper()
	now := time.Now().UTC()
	tag := &types.Tag{
		ID:         uuid.New(),
		Name:       name,
		UsageCount: usageCount,
		LastUsed:   now,
		CreatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(tag).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return tag
}

func SeedHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, areaID string, score float64, snapshotDate time.Time) *types.AssessmentHistory {
	tb.Helper()
	h := &types.AssessmentHistory{
		ID:                     uuid.New(),
		CapabilityAssessmentID: assessmentID,
		CapabilityAreaID:       areaID,
		SnapshotDate:           snapshotDate,
		OverallScore:           score,
		CreatedAt:              time.Now().UTC(),
	}
	h.SetTags(nil)
	h.SetRatingSnapshots(nil)
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed history: %v", err)
	}
	return h
}
