package export

import (
	"time"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

func nowUTC() time.Time { return time.Now().UTC() }

func assessmentToRecord(a *types.CapabilityAssessment) types.AssessmentRecord {
	rec := types.AssessmentRecord{
		ID:                 a.ID.String(),
		CapabilityDomainID: a.CapabilityDomainID,
		DomainName:         a.DomainName,
		CapabilityAreaID:   a.CapabilityAreaID,
		AreaName:           a.AreaName,
		Status:             a.Status,
		Tags:               a.TagList(),
		OverallScore:       a.OverallScore,
		CreatedAt:          types.FormatISO(a.CreatedAt),
		UpdatedAt:          types.FormatISO(a.UpdatedAt),
	}
	if a.FinalizedAt != nil {
		rec.FinalizedAt = types.FormatISO(*a.FinalizedAt)
	}
	return rec
}

func ratingToRecord(r *types.OrbitRating) types.RatingRecord {
	ids := make([]string, 0)
	for _, id := range r.AttachmentIDList() {
		ids = append(ids, id.String())
	}
	return types.RatingRecord{
		ID:                     r.ID.String(),
		CapabilityAssessmentID: r.CapabilityAssessmentID.String(),
		DimensionID:            r.DimensionID,
		SubDimensionID:         r.SubDimensionID,
		AspectID:               r.AspectID,
		CurrentLevel:           r.CurrentLevel,
		TargetLevel:            r.TargetLevel,
		Notes:                  r.Notes,
		Barriers:               r.Barriers,
		Plans:                  r.Plans,
		ChecklistState:         r.ChecklistMap(),
		CarriedForward:         r.CarriedForward,
		AttachmentIDs:          ids,
		CreatedAt:              types.FormatISO(r.CreatedAt),
		UpdatedAt:              types.FormatISO(r.UpdatedAt),
	}
}

func historyToRecord(h *types.AssessmentHistory) types.HistoryRecord {
	return types.HistoryRecord{
		ID:                     h.ID.String(),
		CapabilityAssessmentID: h.CapabilityAssessmentID.String(),
		CapabilityAreaID:       h.CapabilityAreaID,
		SnapshotDate:           types.FormatISO(h.SnapshotDate),
		Tags:                   h.TagList(),
		OverallScore:           h.OverallScore,
		DimensionScores:        h.DimensionScoreMap(),
		Ratings:                h.RatingSnapshots(),
	}
}

func tagToRecord(t *types.Tag) types.TagRecord {
	return types.TagRecord{
		Name:       t.Name,
		UsageCount: t.UsageCount,
		LastUsed:   types.FormatISO(t.LastUsed),
	}
}

func attachmentToRecord(a *types.Attachment) types.AttachmentRecord {
	return types.AttachmentRecord{
		ID:                     a.ID.String(),
		CapabilityAssessmentID: a.CapabilityAssessmentID.String(),
		OrbitRatingID:          a.OrbitRatingID.String(),
		FileName:               a.FileName,
		FileType:               a.FileType,
		FileSize:               a.FileSize,
		Description:            a.Description,
		UploadedAt:             types.FormatISO(a.UploadedAt),
	}
}
