package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

// Converters from payload wire records to store rows. Generated ids
// from the payload are never trusted: assessments and ratings always
// get fresh ids on the way in.

func assessmentFromRecord(rec types.AssessmentRecord) (*types.CapabilityAssessment, error) {
	createdAt, err := types.ParseISO(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad createdAt %q: %w", rec.CreatedAt, err)
	}
	updatedAt, err := types.ParseISO(rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updatedAt %q: %w", rec.UpdatedAt, err)
	}

	status := rec.Status
	if status == "" {
		status = types.StatusInProgress
	}

	a := &types.CapabilityAssessment{
		CapabilityDomainID: rec.CapabilityDomainID,
		DomainName:         rec.DomainName,
		CapabilityAreaID:   rec.CapabilityAreaID,
		AreaName:           rec.AreaName,
		Status:             status,
		OverallScore:       rec.OverallScore,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
	a.SetTags(rec.Tags)

	if rec.FinalizedAt != "" {
		finalizedAt, err := types.ParseISO(rec.FinalizedAt)
		if err != nil {
			return nil, fmt.Errorf("bad finalizedAt %q: %w", rec.FinalizedAt, err)
		}
		a.FinalizedAt = &finalizedAt
	}
	return a, nil
}

func ratingsFromRecords(recs []types.RatingRecord, assessmentID uuid.UUID) ([]*types.OrbitRating, error) {
	now := time.Now().UTC()
	rows := make([]*types.OrbitRating, 0, len(recs))
	for _, rec := range recs {
		if rec.DimensionID == "" || rec.AspectID == "" {
			return nil, fmt.Errorf("rating %q has no dimension/aspect", rec.ID)
		}

		createdAt, err := types.ParseISO(rec.CreatedAt)
		if err != nil {
			createdAt = now
		}
		updatedAt, err := types.ParseISO(rec.UpdatedAt)
		if err != nil {
			updatedAt = now
		}

		row := &types.OrbitRating{
			ID:                     uuid.New(),
			CapabilityAssessmentID: assessmentID,
			DimensionID:            rec.DimensionID,
			SubDimensionID:         rec.SubDimensionID,
			AspectID:               rec.AspectID,
			CurrentLevel:           rec.CurrentLevel,
			TargetLevel:            rec.TargetLevel,
			Notes:                  rec.Notes,
			Barriers:               rec.Barriers,
			Plans:                  rec.Plans,
			CarriedForward:         rec.CarriedForward,
			CreatedAt:              createdAt,
			UpdatedAt:              updatedAt,
		}
		row.SetChecklist(rec.ChecklistState)
		// Attachment ids from the payload are dangling here: blobs
		// arrive only through the ZIP bundle pass, which rebuilds the
		// references against the new rating rows.
		rows = append(rows, row)
	}
	return rows, nil
}

func historyFromRecord(rec types.HistoryRecord, id uuid.UUID, idRemap map[string]uuid.UUID) (*types.AssessmentHistory, error) {
	snapshotDate, err := types.ParseISO(rec.SnapshotDate)
	if err != nil {
		return nil, fmt.Errorf("bad snapshotDate %q: %w", rec.SnapshotDate, err)
	}

	assessmentID, ok := idRemap[rec.CapabilityAssessmentID]
	if !ok {
		parsed, err := uuid.Parse(rec.CapabilityAssessmentID)
		if err != nil {
			return nil, fmt.Errorf("bad capabilityAssessmentId %q: %w", rec.CapabilityAssessmentID, err)
		}
		assessmentID = parsed
	}

	h := &types.AssessmentHistory{
		ID:                     id,
		CapabilityAssessmentID: assessmentID,
		CapabilityAreaID:       rec.CapabilityAreaID,
		SnapshotDate:           snapshotDate,
		OverallScore:           rec.OverallScore,
		CreatedAt:              time.Now().UTC(),
	}
	h.SetTags(rec.Tags)
	h.SetDimensionScores(rec.DimensionScores)
	h.SetRatingSnapshots(rec.Ratings)
	return h, nil
}
