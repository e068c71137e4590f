// Package importer reconciles externally supplied export payloads
// with the local store. Each imported assessment record is merged
// independently against the current record of its capability area:
// it is adopted as current, filed as history, or skipped as a
// duplicate/stale entry. Repeated import of the same payload is a
// no-op (all records skip).
package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	"github.com/orbitlabs/orbit-assess/internal/history"
	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/services"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// Near-duplicate tolerances, carried over verbatim from the observed
// export behavior. Two records within one second of each other whose
// scores differ by less than a hundredth are the same snapshot as far
// as the merge is concerned. Tuning either value is a behavior
// change, not a cleanup.
const (
	duplicateWindow = 1000 * time.Millisecond
	scoreTolerance  = 0.01
)

// ProgressFunc receives coarse-grained progress at phase boundaries:
// parsing, per-record iteration, tag/history pass, attachment pass,
// completion. It is called synchronously.
type ProgressFunc func(percent int, message string)

type Options struct {
	Progress ProgressFunc
}

// Result is the structured outcome of one import call. Success is
// false iff Errors is non-empty: a fully skipped (all-duplicate)
// import is still a success.
type Result struct {
	Success           bool     `json:"success"`
	ImportedAsCurrent int      `json:"importedAsCurrent"`
	ImportedAsHistory int      `json:"importedAsHistory"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors"`
	Details           []string `json:"details"`

	// payload assessment id -> current store id, for the attachment
	// pass (ratings get new ids during import, so attachments must
	// resolve through the area, not the original ids).
	idRemap map[string]uuid.UUID
}

type Reconciler struct {
	db          *gorm.DB
	log         *logger.Logger
	assessments repos.AssessmentRepo
	ratings     repos.RatingRepo
	historyRepo repos.HistoryRepo
	tags        repos.TagRepo
	attachments repos.AttachmentRepo
	blobs       *services.BlobStore
}

func NewReconciler(
	db *gorm.DB,
	baseLog *logger.Logger,
	assessments repos.AssessmentRepo,
	ratings repos.RatingRepo,
	historyRepo repos.HistoryRepo,
	tags repos.TagRepo,
	attachments repos.AttachmentRepo,
	blobs *services.BlobStore,
) *Reconciler {
	return &Reconciler{
		db:          db,
		log:         baseLog.With("service", "Reconciler"),
		assessments: assessments,
		ratings:     ratings,
		historyRepo: historyRepo,
		tags:        tags,
		attachments: attachments,
		blobs:       blobs,
	}
}

// Import runs the full reconciliation over a raw JSON payload.
// Validation failure aborts with zero writes. Past validation,
// records are processed sequentially in payload order, each in its
// own transaction; one record's failure is reported and does not
// block the rest.
func (r *Reconciler) Import(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(int, string) {}
	}

	res := &Result{idRemap: map[string]uuid.UUID{}}

	progress(0, "parsing export payload")
	payload, errs := ValidatePayload(raw)
	if len(errs) > 0 {
		res.Errors = errs
		return res, nil
	}

	ratingsByAssessment := map[string][]types.RatingRecord{}
	for _, rr := range payload.Data.Ratings {
		ratingsByAssessment[rr.CapabilityAssessmentID] = append(ratingsByAssessment[rr.CapabilityAssessmentID], rr)
	}

	total := len(payload.Data.Assessments)
	for i, rec := range payload.Data.Assessments {
		pct := 10
		if total > 0 {
			pct = 10 + (i*70)/total
		}
		progress(pct, fmt.Sprintf("merging assessment %d of %d (%s)", i+1, total, rec.CapabilityAreaID))

		if err := r.importAssessment(ctx, rec, ratingsByAssessment[rec.ID], res); err != nil {
			r.log.Warn("assessment merge failed", "area_id", rec.CapabilityAreaID, "error", err.Error())
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", rec.CapabilityAreaID, err))
		}
	}

	progress(85, "importing tags")
	r.importTags(ctx, payload.Data.Tags, res)

	progress(90, "importing history entries")
	r.importHistory(ctx, payload.Data.History, res)

	progress(100, "import complete")
	res.Success = len(res.Errors) == 0
	r.log.Info("import finished",
		"imported_as_current", res.ImportedAsCurrent,
		"imported_as_history", res.ImportedAsHistory,
		"skipped", res.Skipped,
		"errors", len(res.Errors))
	return res, nil
}

func (r *Reconciler) importAssessment(ctx context.Context, rec types.AssessmentRecord, ratingRecs []types.RatingRecord, res *Result) error {
	if rec.CapabilityAreaID == "" {
		return fmt.Errorf("record has no capabilityAreaId: %w", apperrors.ErrInvalidArgument)
	}
	importedUpdated, err := types.ParseISO(rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("bad updatedAt %q: %w", rec.UpdatedAt, err)
	}

	existing, err := r.assessments.GetCurrentByAreaID(ctx, nil, rec.CapabilityAreaID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	if existing == nil {
		return r.adoptAsNew(ctx, rec, ratingRecs, res)
	}

	timeDiff := importedUpdated.Sub(existing.UpdatedAt)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff < duplicateWindow && rec.OverallScore != nil && existing.OverallScore != nil &&
		math.Abs(*rec.OverallScore-*existing.OverallScore) < scoreTolerance {
		res.Skipped++
		res.Details = append(res.Details, fmt.Sprintf("%s: skipped: identical to current", rec.CapabilityAreaID))
		res.idRemap[rec.ID] = existing.ID
		return nil
	}

	if importedUpdated.After(existing.UpdatedAt) {
		return r.replaceCurrent(ctx, rec, ratingRecs, existing, res)
	}
	return r.fileAsHistory(ctx, rec, ratingRecs, existing, res)
}

// adoptAsNew imports a record for an area with no current assessment.
func (r *Reconciler) adoptAsNew(ctx context.Context, rec types.AssessmentRecord, ratingRecs []types.RatingRecord, res *Result) error {
	assessment, err := assessmentFromRecord(rec)
	if err != nil {
		return err
	}
	assessment.ID = uuid.New()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.assessments.Create(ctx, tx, []*types.CapabilityAssessment{assessment}); err != nil {
			return err
		}
		rows, err := ratingsFromRecords(ratingRecs, assessment.ID)
		if err != nil {
			return err
		}
		_, err = r.ratings.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return err
	}

	res.ImportedAsCurrent++
	res.Details = append(res.Details, fmt.Sprintf("%s: imported_current", rec.CapabilityAreaID))
	res.idRemap[rec.ID] = assessment.ID
	return nil
}

// replaceCurrent adopts a newer imported record over the local one:
// the local record is archived first when it is finalized with a
// score, then overwritten in place (same assessment id, fresh rating
// rows).
func (r *Reconciler) replaceCurrent(ctx context.Context, rec types.AssessmentRecord, ratingRecs []types.RatingRecord, existing *types.CapabilityAssessment, res *Result) error {
	incoming, err := assessmentFromRecord(rec)
	if err != nil {
		return err
	}

	archived := false
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if existing.IsFinalized() && existing.HasScore() {
			currentRatings, err := r.ratings.GetByAssessmentID(ctx, tx, existing.ID)
			if err != nil {
				return err
			}
			snap, err := history.CreateSnapshot(existing, currentRatings)
			if err != nil {
				return err
			}
			if _, err := r.historyRepo.Create(ctx, tx, []*types.AssessmentHistory{snap}); err != nil {
				return err
			}
			archived = true
		}

		if err := r.ratings.DeleteByAssessmentID(ctx, tx, existing.ID); err != nil {
			return err
		}

		existing.Status = incoming.Status
		existing.Tags = incoming.Tags
		existing.UpdatedAt = incoming.UpdatedAt
		existing.FinalizedAt = incoming.FinalizedAt
		existing.OverallScore = incoming.OverallScore
		if err := r.assessments.Update(ctx, tx, existing); err != nil {
			return err
		}

		rows, err := ratingsFromRecords(ratingRecs, existing.ID)
		if err != nil {
			return err
		}
		_, err = r.ratings.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return err
	}

	res.ImportedAsCurrent++
	detail := fmt.Sprintf("%s: imported_current: replaced older local", rec.CapabilityAreaID)
	if archived {
		detail += " (moved to history)"
	}
	res.Details = append(res.Details, detail)
	res.idRemap[rec.ID] = existing.ID
	return nil
}

// fileAsHistory handles an imported record older than (or equal to)
// the local one. A finalized-with-score import becomes a history
// entry unless a near-duplicate snapshot already exists; anything
// else is stale and skipped. The current record is never touched.
func (r *Reconciler) fileAsHistory(ctx context.Context, rec types.AssessmentRecord, ratingRecs []types.RatingRecord, existing *types.CapabilityAssessment, res *Result) error {
	res.idRemap[rec.ID] = existing.ID

	if rec.Status != types.StatusFinalized || rec.OverallScore == nil {
		res.Skipped++
		res.Details = append(res.Details, fmt.Sprintf("%s: skipped: local is newer and imported not finalized", rec.CapabilityAreaID))
		return nil
	}

	incoming, err := assessmentFromRecord(rec)
	if err != nil {
		return err
	}
	snapshotDate := incoming.UpdatedAt
	if incoming.FinalizedAt != nil {
		snapshotDate = *incoming.FinalizedAt
	}

	entries, err := r.historyRepo.GetByAreaID(ctx, nil, rec.CapabilityAreaID)
	if err != nil {
		return err
	}
	for _, h := range entries {
		diff := snapshotDate.Sub(h.SnapshotDate)
		if diff < 0 {
			diff = -diff
		}
		if diff < duplicateWindow && math.Abs(h.OverallScore-*rec.OverallScore) < scoreTolerance {
			res.Skipped++
			res.Details = append(res.Details, fmt.Sprintf("%s: historical entry already exists", rec.CapabilityAreaID))
			return nil
		}
	}

	// Build the snapshot from the imported data. The archived row
	// points at the area's current assessment so revert can find it.
	rows, err := ratingsFromRecords(ratingRecs, existing.ID)
	if err != nil {
		return err
	}
	incoming.ID = existing.ID
	snap, err := history.CreateSnapshot(incoming, rows)
	if err != nil {
		return err
	}
	if _, err := r.historyRepo.Create(ctx, nil, []*types.AssessmentHistory{snap}); err != nil {
		return err
	}

	res.ImportedAsHistory++
	res.Details = append(res.Details, fmt.Sprintf("%s: imported_as_history", rec.CapabilityAreaID))
	return nil
}

// importTags adds payload tags that don't exist yet. Local counters
// always win: an imported tag never overwrites an existing row.
func (r *Reconciler) importTags(ctx context.Context, tagRecs []types.TagRecord, res *Result) {
	now := time.Now().UTC()
	for _, tr := range tagRecs {
		if tr.Name == "" {
			continue
		}
		if _, err := r.tags.GetByName(ctx, nil, tr.Name); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			res.Errors = append(res.Errors, fmt.Sprintf("tag %q: %v", tr.Name, err))
			continue
		}

		lastUsed, err := types.ParseISO(tr.LastUsed)
		if err != nil {
			lastUsed = now
		}
		_, err = r.tags.Create(ctx, nil, []*types.Tag{{
			ID:         uuid.New(),
			Name:       tr.Name,
			UsageCount: tr.UsageCount,
			LastUsed:   lastUsed,
			CreatedAt:  now,
		}})
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("tag %q: %v", tr.Name, err))
		}
	}
}

// importHistory adds payload history entries whose exact id is not
// already present, which makes re-import of the same payload a no-op.
func (r *Reconciler) importHistory(ctx context.Context, histRecs []types.HistoryRecord, res *Result) {
	for _, hr := range histRecs {
		id, err := uuid.Parse(hr.ID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("history entry %q: bad id", hr.ID))
			continue
		}
		if _, err := r.historyRepo.GetByID(ctx, nil, id); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			res.Errors = append(res.Errors, fmt.Sprintf("history entry %s: %v", hr.ID, err))
			continue
		}

		row, err := historyFromRecord(hr, id, res.idRemap)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("history entry %s: %v", hr.ID, err))
			continue
		}
		if _, err := r.historyRepo.Create(ctx, nil, []*types.AssessmentHistory{row}); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("history entry %s: %v", hr.ID, err))
		}
	}
}
