package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CapabilityAssessment is the current record for one capability area.
// The unique index on capability_area_id enforces that at most one
// current record exists per area; superseded versions live only in
// AssessmentHistory.
//
// CreatedAt/UpdatedAt are managed by the engine, not by GORM: import
// merge decisions compare the imported UpdatedAt against the stored
// one, so the store must never bump it behind the engine's back.
type CapabilityAssessment struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CapabilityDomainID string         `gorm:"column:capability_domain_id;not null;index" json:"capability_domain_id"`
	DomainName         string         `gorm:"column:domain_name;not null" json:"domain_name"`
	CapabilityAreaID   string         `gorm:"column:capability_area_id;not null;uniqueIndex:idx_current_area" json:"capability_area_id"`
	AreaName           string         `gorm:"column:area_name;not null" json:"area_name"`
	Status             string         `gorm:"column:status;not null;default:'in_progress'" json:"status"`
	Tags               datatypes.JSON `gorm:"column:tags" json:"tags"`
	OverallScore       *float64       `gorm:"column:overall_score" json:"overall_score,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	FinalizedAt        *time.Time     `gorm:"column:finalized_at" json:"finalized_at,omitempty"`
}

func (CapabilityAssessment) TableName() string { return "capability_assessment" }

func (a *CapabilityAssessment) IsFinalized() bool {
	return a.Status == StatusFinalized
}

// HasScore reports whether the assessment carries a stored overall
// score, i.e. it was finalized with at least one qualifying rating.
func (a *CapabilityAssessment) HasScore() bool {
	return a.OverallScore != nil
}
