package types

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is the metadata row for a file attached to a rating. The
// blob itself lives outside the store (on disk under the attachment
// directory); the row is referential only.
type Attachment struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CapabilityAssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"capability_assessment_id"`
	OrbitRatingID          uuid.UUID `gorm:"type:uuid;not null;index" json:"orbit_rating_id"`
	FileName               string    `gorm:"column:file_name;not null" json:"file_name"`
	FileType               string    `gorm:"column:file_type" json:"file_type"`
	FileSize               int64     `gorm:"column:file_size;not null;default:0" json:"file_size"`
	Description            string    `gorm:"column:description" json:"description"`
	UploadedAt             time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`
	CreatedAt              time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
}

func (Attachment) TableName() string { return "attachment" }
