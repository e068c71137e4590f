package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlabs/orbit-assess/internal/data/repos/testutil"
	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
)

func TestTagRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewTagRepo(db, testutil.Logger(t))

	seeded := testutil.SeedTag(t, ctx, tx, "strategic", 2)

	got, err := repo.GetByName(ctx, tx, "strategic")
	if err != nil || got.ID != seeded.ID {
		t.Fatalf("GetByName: err=%v", err)
	}
	// Names are case-sensitive.
	if _, err := repo.GetByName(ctx, tx, "Strategic"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByName different case: err=%v, want ErrNotFound", err)
	}

	got.UsageCount = 3
	got.LastUsed = time.Now().UTC()
	if err := repo.Update(ctx, tx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	testutil.SeedTag(t, ctx, tx, "quick-win", 0)
	rows, err := repo.ListAll(ctx, tx)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListAll: err=%v len=%d", err, len(rows))
	}

	if err := repo.DeleteByNames(ctx, tx, []string{"quick-win"}); err != nil {
		t.Fatalf("DeleteByNames: %v", err)
	}
	if _, err := repo.GetByName(ctx, tx, "quick-win"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByName after delete: err=%v, want ErrNotFound", err)
	}
}

func TestHistoryRepoLatest(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewHistoryRepo(db, testutil.Logger(t))

	assessmentID := uuid.New()
	old := testutil.SeedHistory(t, ctx, tx, assessmentID, "area-hist-1", 2.0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newest := testutil.SeedHistory(t, ctx, tx, assessmentID, "area-hist-1", 4.0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	got, err := repo.GetLatestByAssessmentID(ctx, tx, assessmentID)
	if err != nil || got.ID != newest.ID {
		t.Fatalf("GetLatestByAssessmentID: err=%v", err)
	}

	rows, err := repo.GetByAreaID(ctx, tx, "area-hist-1")
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByAreaID: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != newest.ID || rows[1].ID != old.ID {
		t.Fatalf("GetByAreaID not newest-first")
	}

	if err := repo.DeleteByIDs(ctx, tx, []uuid.UUID{newest.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	got, err = repo.GetLatestByAssessmentID(ctx, tx, assessmentID)
	if err != nil || got.ID != old.ID {
		t.Fatalf("GetLatestByAssessmentID after delete: err=%v", err)
	}
}
