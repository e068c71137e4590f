package types

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a registry entry referenced by name from assessment tag
// arrays (weak reference). Names are unique and case-sensitive.
// UsageCount increments on every save/finalize that references the
// tag and a tag is eligible for cleanup once it drops to zero.
type Tag struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	UsageCount int       `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	LastUsed   time.Time `gorm:"column:last_used;not null" json:"last_used"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
}

func (Tag) TableName() string { return "tag" }
