package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	"github.com/orbitlabs/orbit-assess/internal/data/repos/testutil"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// The reconciler manages its own transactions, so these tests run
// against the shared test database directly and isolate through
// unique capability area ids instead of rollback.

func newTestReconciler(t *testing.T) (*Reconciler, repos.AssessmentRepo, repos.RatingRepo, repos.HistoryRepo, repos.TagRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	assessments := repos.NewAssessmentRepo(db, log)
	ratings := repos.NewRatingRepo(db, log)
	historyRepo := repos.NewHistoryRepo(db, log)
	tags := repos.NewTagRepo(db, log)
	attachments := repos.NewAttachmentRepo(db, log)
	rec := NewReconciler(db, log, assessments, ratings, historyRepo, tags, attachments, nil)
	return rec, assessments, ratings, historyRepo, tags
}

func uniqueAreaID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func marshalPayload(t *testing.T, payload types.ExportPayload) []byte {
	t.Helper()
	payload.ExportVersion = types.ExportVersion
	if payload.ExportDate == "" {
		payload.ExportDate = types.FormatISO(time.Now())
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func finalizedRecord(areaID string, score float64, when time.Time) types.AssessmentRecord {
	return types.AssessmentRecord{
		ID:                 uuid.NewString(),
		CapabilityDomainID: "domain-1",
		DomainName:         "Domain One",
		CapabilityAreaID:   areaID,
		AreaName:           "Area " + areaID,
		Status:             types.StatusFinalized,
		OverallScore:       &score,
		CreatedAt:          types.FormatISO(when.Add(-time.Hour)),
		UpdatedAt:          types.FormatISO(when),
		FinalizedAt:        types.FormatISO(when),
	}
}

func ratingRecord(assessmentID, dimensionID string, level int) types.RatingRecord {
	now := types.FormatISO(time.Now())
	return types.RatingRecord{
		ID:                     uuid.NewString(),
		CapabilityAssessmentID: assessmentID,
		DimensionID:            dimensionID,
		AspectID:               "overall",
		CurrentLevel:           level,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func TestImportAdoptsNewArea(t *testing.T) {
	rec, assessments, ratings, _, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("adopt")

	record := finalizedRecord(areaID, 3.2, time.Now().Add(-time.Hour))
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings: []types.RatingRecord{
				ratingRecord(record.ID, types.DimensionOutcomes, 3),
				ratingRecord(record.ID, types.DimensionRoles, 4),
			},
		},
	})

	res, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.ImportedAsCurrent != 1 || res.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	current, err := assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID.String() == record.ID {
		t.Fatal("imported id was adopted verbatim, expected a fresh id")
	}
	if current.Status != types.StatusFinalized {
		t.Fatalf("expected finalized status, got %q", current.Status)
	}

	rows, err := ratings.GetByAssessmentID(ctx, nil, current.ID)
	if err != nil {
		t.Fatalf("get ratings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ratings, got %d", len(rows))
	}
}

func TestImportSkipsNearDuplicate(t *testing.T) {
	rec, assessments, _, historyRepo, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("dup")

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-24 * time.Hour)
	local := testutil.SeedFinalizedAssessment(t, ctx, testutil.DB(t), areaID, 3.2, base)

	// 400ms newer, score off by 0.005: inside both tolerances.
	record := finalizedRecord(areaID, 3.205, base.Add(400*time.Millisecond))
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings:     []types.RatingRecord{ratingRecord(record.ID, types.DimensionOutcomes, 3)},
		},
	})

	res, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.Skipped != 1 || res.ImportedAsCurrent != 0 || res.ImportedAsHistory != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	reloaded, err := assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if reloaded.ID != local.ID || !reloaded.UpdatedAt.Equal(local.UpdatedAt) {
		t.Fatal("near-duplicate import modified the current record")
	}
	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("near-duplicate import wrote %d history entries", len(entries))
	}
}

func TestImportReplacesOlderLocal(t *testing.T) {
	rec, assessments, ratings, historyRepo, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("replace")

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-48 * time.Hour)
	local := testutil.SeedFinalizedAssessment(t, ctx, testutil.DB(t), areaID, 2.5, base)
	testutil.SeedRating(t, ctx, testutil.DB(t), local.ID, types.DimensionOutcomes, 2)

	record := finalizedRecord(areaID, 3.8, base.Add(24*time.Hour))
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings: []types.RatingRecord{
				ratingRecord(record.ID, types.DimensionOutcomes, 4),
				ratingRecord(record.ID, types.DimensionBusiness, 3),
			},
		},
	})

	res, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.ImportedAsCurrent != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Same row wins, so the area still has exactly one current record.
	current, err := assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != local.ID {
		t.Fatal("replace should keep the local assessment id")
	}
	if current.OverallScore == nil || *current.OverallScore != 3.8 {
		t.Fatalf("expected imported score 3.8, got %v", current.OverallScore)
	}

	rows, err := ratings.GetByAssessmentID(ctx, nil, current.ID)
	if err != nil {
		t.Fatalf("get ratings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected imported ratings to replace local ones, got %d rows", len(rows))
	}

	// The displaced local state was archived.
	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].OverallScore != 2.5 {
		t.Fatalf("archived score should be the local 2.5, got %v", entries[0].OverallScore)
	}
}

func TestImportFilesOlderFinalizedAsHistory(t *testing.T) {
	rec, assessments, _, historyRepo, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("history")

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	local := testutil.SeedFinalizedAssessment(t, ctx, testutil.DB(t), areaID, 3.5, base)

	record := finalizedRecord(areaID, 2.0, base.Add(-30*24*time.Hour))
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings:     []types.RatingRecord{ratingRecord(record.ID, types.DimensionOutcomes, 2)},
		},
	})

	res, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.ImportedAsHistory != 1 || res.ImportedAsCurrent != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Local record untouched.
	reloaded, err := assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if *reloaded.OverallScore != 3.5 || !reloaded.UpdatedAt.Equal(local.UpdatedAt) {
		t.Fatal("filing as history modified the current record")
	}

	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].OverallScore != 2.0 {
		t.Fatalf("expected archived score 2.0, got %v", entries[0].OverallScore)
	}
	if entries[0].CapabilityAssessmentID != local.ID {
		t.Fatal("archived entry should reference the area's current assessment")
	}
}

func TestImportSkipsStaleUnfinished(t *testing.T) {
	rec, _, _, historyRepo, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("stale")

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	testutil.SeedFinalizedAssessment(t, ctx, testutil.DB(t), areaID, 3.5, base)

	record := types.AssessmentRecord{
		ID:               uuid.NewString(),
		CapabilityAreaID: areaID,
		AreaName:         "Area " + areaID,
		Status:           types.StatusInProgress,
		CreatedAt:        types.FormatISO(base.Add(-72 * time.Hour)),
		UpdatedAt:        types.FormatISO(base.Add(-48 * time.Hour)),
	}
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings:     []types.RatingRecord{},
		},
	})

	res, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Success || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatal("stale unfinished import must not produce history")
	}
}

func TestImportTwiceIsNoOp(t *testing.T) {
	rec, _, _, historyRepo, tags := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("idem")
	tagName := "import-" + uuid.NewString()[:8]

	record := finalizedRecord(areaID, 3.0, time.Now().Add(-time.Hour))
	record.Tags = []string{tagName}
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings:     []types.RatingRecord{ratingRecord(record.ID, types.DimensionOutcomes, 3)},
			Tags:        []types.TagRecord{{Name: tagName, UsageCount: 1, LastUsed: record.UpdatedAt}},
		},
	})

	first, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if !first.Success || first.ImportedAsCurrent != 1 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := rec.Import(ctx, raw, Options{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !second.Success || second.Skipped != 1 || second.ImportedAsCurrent != 0 || second.ImportedAsHistory != 0 {
		t.Fatalf("expected all-skip on re-import, got %+v", second)
	}

	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("re-import produced %d history entries", len(entries))
	}

	tag, err := tags.GetByName(ctx, nil, tagName)
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if tag.UsageCount != 1 {
		t.Fatalf("re-import changed tag usage count to %d", tag.UsageCount)
	}
}

func TestImportHistoryEntriesAreIDIdempotent(t *testing.T) {
	rec, _, _, historyRepo, _ := newTestReconciler(t)
	ctx := context.Background()
	areaID := uniqueAreaID("histrec")

	record := finalizedRecord(areaID, 3.0, time.Now().Add(-time.Hour))
	hist := types.HistoryRecord{
		ID:                     uuid.NewString(),
		CapabilityAssessmentID: record.ID,
		CapabilityAreaID:       areaID,
		SnapshotDate:           types.FormatISO(time.Now().Add(-90 * 24 * time.Hour)),
		OverallScore:           1.8,
		DimensionScores:        map[string]float64{types.DimensionOutcomes: 1.8},
	}
	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{record},
			Ratings:     []types.RatingRecord{ratingRecord(record.ID, types.DimensionOutcomes, 3)},
			History:     []types.HistoryRecord{hist},
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := rec.Import(ctx, raw, Options{}); err != nil {
			t.Fatalf("import %d: %v", i+1, err)
		}
	}

	entries, err := historyRepo.GetByAreaID(ctx, nil, areaID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 history entry after two imports, got %d", len(entries))
	}
	if entries[0].ID.String() != hist.ID {
		t.Fatal("history entry should keep the payload id")
	}
}

func TestImportReportsProgressAndPartialFailure(t *testing.T) {
	rec, _, _, _, _ := newTestReconciler(t)
	ctx := context.Background()
	goodArea := uniqueAreaID("good")

	good := finalizedRecord(goodArea, 3.0, time.Now().Add(-time.Hour))
	bad := finalizedRecord(uniqueAreaID("bad"), 2.0, time.Now().Add(-time.Hour))
	bad.UpdatedAt = "not-a-date"

	raw := marshalPayload(t, types.ExportPayload{
		Data: types.ExportData{
			Assessments: []types.AssessmentRecord{bad, good},
			Ratings:     []types.RatingRecord{ratingRecord(good.ID, types.DimensionOutcomes, 3)},
		},
	})

	var percents []int
	res, err := rec.Import(ctx, raw, Options{Progress: func(pct int, _ string) {
		percents = append(percents, pct)
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if res.Success {
		t.Fatal("expected Success=false when a record fails")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", res.Errors)
	}
	if res.ImportedAsCurrent != 1 {
		t.Fatalf("good record should still import, got %+v", res)
	}

	if len(percents) < 2 || percents[0] != 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("unexpected progress sequence: %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress went backwards: %v", percents)
		}
	}
}
