package db

import (
	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Current state
		&types.CapabilityAssessment{},
		&types.OrbitRating{},
		&types.Attachment{},

		// Immutable snapshots
		&types.AssessmentHistory{},

		// Tag registry
		&types.Tag{},
	)
}
