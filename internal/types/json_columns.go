package types

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Accessors for the JSON-typed columns. Decode failures degrade to
// empty values; the stored engine never aborts on a malformed column.

func (a *CapabilityAssessment) TagList() []string {
	return decodeStrings(a.Tags)
}

func (a *CapabilityAssessment) SetTags(tags []string) {
	a.Tags = encodeJSON(tags)
}

func (h *AssessmentHistory) TagList() []string {
	return decodeStrings(h.Tags)
}

func (h *AssessmentHistory) SetTags(tags []string) {
	h.Tags = encodeJSON(tags)
}

func (h *AssessmentHistory) DimensionScoreMap() map[string]float64 {
	if len(h.DimensionScores) == 0 {
		return nil
	}
	var m map[string]float64
	if err := json.Unmarshal(h.DimensionScores, &m); err != nil {
		return nil
	}
	return m
}

func (h *AssessmentHistory) SetDimensionScores(scores map[string]float64) {
	h.DimensionScores = encodeJSON(scores)
}

func (h *AssessmentHistory) RatingSnapshots() []RatingSnapshot {
	if len(h.Ratings) == 0 {
		return nil
	}
	var snaps []RatingSnapshot
	if err := json.Unmarshal(h.Ratings, &snaps); err != nil {
		return nil
	}
	return snaps
}

func (h *AssessmentHistory) SetRatingSnapshots(snaps []RatingSnapshot) {
	h.Ratings = encodeJSON(snaps)
}

func (r *OrbitRating) ChecklistMap() map[string]bool {
	if len(r.ChecklistState) == 0 {
		return nil
	}
	var m map[string]bool
	if err := json.Unmarshal(r.ChecklistState, &m); err != nil {
		return nil
	}
	return m
}

func (r *OrbitRating) SetChecklist(state map[string]bool) {
	r.ChecklistState = encodeJSON(state)
}

func (r *OrbitRating) AttachmentIDList() []uuid.UUID {
	strs := decodeStrings(r.AttachmentIDs)
	out := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (r *OrbitRating) SetAttachmentIDs(ids []uuid.UUID) {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	r.AttachmentIDs = encodeJSON(strs)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
