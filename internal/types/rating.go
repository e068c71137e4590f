package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrbitRating is one rating inside an assessment, keyed by the
// compound natural key (assessment, dimension, sub-dimension, aspect).
// SubDimensionID is the empty string when the rating sits directly on
// the dimension.
//
// CurrentLevel: -1 = not applicable, 0 = not assessed, 1..5 = maturity.
// A level of 0 or -1 never contributes to score averages; -1 still
// counts toward assessed-completion counters.
type OrbitRating struct {
	ID                     uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	CapabilityAssessmentID uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_rating_key,priority:1" json:"capability_assessment_id"`
	Assessment             *CapabilityAssessment `gorm:"constraint:OnDelete:CASCADE;foreignKey:CapabilityAssessmentID;references:ID" json:"assessment,omitempty"`
	DimensionID            string                `gorm:"column:dimension_id;not null;uniqueIndex:idx_rating_key,priority:2" json:"dimension_id"`
	SubDimensionID         string                `gorm:"column:sub_dimension_id;not null;default:'';uniqueIndex:idx_rating_key,priority:3" json:"sub_dimension_id"`
	AspectID               string                `gorm:"column:aspect_id;not null;uniqueIndex:idx_rating_key,priority:4" json:"aspect_id"`
	CurrentLevel           int                   `gorm:"column:current_level;not null;default:0" json:"current_level"`
	TargetLevel            *int                  `gorm:"column:target_level" json:"target_level,omitempty"`
	Notes                  string                `gorm:"column:notes" json:"notes"`
	Barriers               string                `gorm:"column:barriers" json:"barriers"`
	Plans                  string                `gorm:"column:plans" json:"plans"`
	ChecklistState         datatypes.JSON        `gorm:"column:checklist_state" json:"checklist_state"`
	CarriedForward         bool                  `gorm:"column:carried_forward;not null;default:false" json:"carried_forward"`
	AttachmentIDs          datatypes.JSON        `gorm:"column:attachment_ids" json:"attachment_ids"`
	CreatedAt              time.Time             `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt              time.Time             `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

func (OrbitRating) TableName() string { return "orbit_rating" }

// RatingKey is the compound natural key of a rating within its
// assessment. Modeled as a comparable struct rather than concatenated
// strings so dimension/sub-dimension boundaries can never collide.
type RatingKey struct {
	DimensionID    string
	SubDimensionID string
	AspectID       string
}

func (r *OrbitRating) Key() RatingKey {
	return RatingKey{
		DimensionID:    r.DimensionID,
		SubDimensionID: r.SubDimensionID,
		AspectID:       r.AspectID,
	}
}

// DimensionGroupKey is the grouping key used for per-dimension score
// aggregation: "dim" or "dim:sub" when a sub-dimension is present.
func (r *OrbitRating) DimensionGroupKey() string {
	if r.SubDimensionID == "" {
		return r.DimensionID
	}
	return r.DimensionID + ":" + r.SubDimensionID
}

// IsAssessed reports whether the rating was touched at all, including
// the explicit not-applicable marker.
func (r *OrbitRating) IsAssessed() bool {
	return r.CurrentLevel != LevelNotAssessed
}

// CountsTowardScore reports whether the rating contributes to score
// averages (maturity levels 1..5 only).
func (r *OrbitRating) CountsTowardScore() bool {
	return r.CurrentLevel > LevelNotAssessed
}
