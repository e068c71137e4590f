package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentHistory is an immutable snapshot of a finalized
// assessment, taken when the assessment is reopened for editing or
// when an import supersedes a local record. Rows are never mutated;
// they are deleted only by explicit user action or consumed by
// RevertEdit.
type AssessmentHistory struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CapabilityAssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"capability_assessment_id"`
	CapabilityAreaID       string         `gorm:"column:capability_area_id;not null;index" json:"capability_area_id"`
	SnapshotDate           time.Time      `gorm:"column:snapshot_date;not null;index" json:"snapshot_date"`
	Tags                   datatypes.JSON `gorm:"column:tags" json:"tags"`
	OverallScore           float64        `gorm:"column:overall_score;not null" json:"overall_score"`
	DimensionScores        datatypes.JSON `gorm:"column:dimension_scores" json:"dimension_scores"`
	Ratings                datatypes.JSON `gorm:"column:ratings" json:"ratings"`
	CreatedAt              time.Time      `gorm:"not null;autoCreateTime:false" json:"created_at"`
}

func (AssessmentHistory) TableName() string { return "assessment_history" }

// RatingSnapshot is the denormalized copy of one rating stored inside
// a history row. Attachment ids are deliberately absent: attachments
// are not versioned.
type RatingSnapshot struct {
	DimensionID    string          `json:"dimensionId"`
	SubDimensionID string          `json:"subDimensionId,omitempty"`
	AspectID       string          `json:"aspectId"`
	CurrentLevel   int             `json:"currentLevel"`
	TargetLevel    *int            `json:"targetLevel,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Barriers       string          `json:"barriers,omitempty"`
	Plans          string          `json:"plans,omitempty"`
	ChecklistState map[string]bool `json:"checklistState,omitempty"`
}
