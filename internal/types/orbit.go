package types

// The five fixed ORBIT assessment dimensions. Every capability area is
// rated across exactly this set.
const (
	DimensionOutcomes    = "outcomes"
	DimensionRoles       = "roles"
	DimensionBusiness    = "business"
	DimensionInformation = "information"
	DimensionTechnology  = "technology"
)

// OrbitDimensions lists the dimensions in canonical display order.
var OrbitDimensions = []string{
	DimensionOutcomes,
	DimensionRoles,
	DimensionBusiness,
	DimensionInformation,
	DimensionTechnology,
}

// Assessment status values. "not started" is implicit: no record exists.
const (
	StatusInProgress = "in_progress"
	StatusFinalized  = "finalized"
)

// Rating levels outside the 1..5 maturity scale.
const (
	LevelNotApplicable = -1
	LevelNotAssessed   = 0
)
