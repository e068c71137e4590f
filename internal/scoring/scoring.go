// Package scoring computes enhanced maturity scores: a discrete
// maturity level per ORBIT dimension plus fractional partial credit
// earned from checklist completion within the selected level.
//
// Every function here is pure and degrade-don't-fail: malformed or
// missing inputs produce a conservative fallback score (and a warning
// where a caller can carry one), never an error. Exports must not
// hard-fail because one capability has bad data.
package scoring

import (
	"fmt"
	"math"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

// CheckboxCompletion summarizes checklist progress for the selected
// maturity level.
type CheckboxCompletion struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// DimensionScore is the enhanced score of a single ORBIT dimension.
type DimensionScore struct {
	MaturityLevel int                `json:"maturityLevel"`
	PartialCredit float64            `json:"partialCredit"`
	FinalScore    float64            `json:"finalScore"`
	Completion    CheckboxCompletion `json:"checkboxCompletion"`
}

// DimensionInput is the rateable state of one dimension: the selected
// maturity level and the checklist state keyed by "level{N}-{i}".
type DimensionInput struct {
	MaturityLevel int
	Checklist     map[string]bool
}

// EnhancedMaturityScore is the capability-level result across the
// five fixed ORBIT dimensions.
type EnhancedMaturityScore struct {
	CapabilityAreaID string                    `json:"capabilityAreaId"`
	AreaName         string                    `json:"areaName"`
	OverallScore     float64                   `json:"overallScore"`
	BaseScore        float64                   `json:"baseScore"`
	PartialCredit    float64                   `json:"partialCredit"`
	Dimensions       map[string]DimensionScore `json:"dimensions"`
	// Degraded is set when the capability was scored without its
	// definition (base score only, no partial credit possible).
	Degraded bool `json:"degraded,omitempty"`
}

// CalculateDimensionScore scores one dimension. Levels outside [0,5]
// are treated as unassessed rather than rejected. A level with no
// defined checklist items earns no bonus: the final score is exactly
// the maturity level.
func CalculateDimensionScore(maturityLevel int, checklistState map[string]bool, checklistItems []string) DimensionScore {
	if maturityLevel < 1 || maturityLevel > 5 {
		return DimensionScore{}
	}

	total := len(checklistItems)
	if total == 0 {
		return DimensionScore{
			MaturityLevel: maturityLevel,
			FinalScore:    float64(maturityLevel),
		}
	}

	completed := 0
	for i := 0; i < total; i++ {
		if checklistState[checklistKey(maturityLevel, i)] {
			completed++
		}
	}

	partial := Round2(float64(completed) / float64(total))
	return DimensionScore{
		MaturityLevel: maturityLevel,
		PartialCredit: partial,
		FinalScore:    Round2(float64(maturityLevel) + partial),
		Completion: CheckboxCompletion{
			Completed:  completed,
			Total:      total,
			Percentage: Round2(float64(completed) / float64(total) * 100),
		},
	}
}

// CalculateCapabilityScore scores one capability area across exactly
// the five ORBIT dimensions. A missing definition drops the engine
// into base-score-only mode: partial credit is forced to zero and the
// overall score equals the base score. That is a documented degraded
// mode, not an error.
func CalculateCapabilityScore(areaID, areaName string, dims map[string]DimensionInput, def *types.CapabilityDefinition) EnhancedMaturityScore {
	score := EnhancedMaturityScore{
		CapabilityAreaID: areaID,
		AreaName:         areaName,
		Dimensions:       make(map[string]DimensionScore, len(types.OrbitDimensions)),
		Degraded:         def == nil,
	}

	var finalSum, baseSum, partialSum float64
	for _, dim := range types.OrbitDimensions {
		input := dims[dim]

		var items []string
		if def != nil {
			items = def.Dimensions[dim].ChecklistItemsForLevel(input.MaturityLevel)
		}

		ds := CalculateDimensionScore(input.MaturityLevel, input.Checklist, items)
		score.Dimensions[dim] = ds

		finalSum += ds.FinalScore
		baseSum += float64(ds.MaturityLevel)
		partialSum += ds.PartialCredit
	}

	n := float64(len(types.OrbitDimensions))
	score.OverallScore = Round2(finalSum / n)
	score.BaseScore = Round2(baseSum / n)
	score.PartialCredit = Round2(partialSum / n)
	return score
}

// CapabilityInput is one capability area's rateable state.
type CapabilityInput struct {
	AreaID     string
	AreaName   string
	Dimensions map[string]DimensionInput
}

// OverallResult carries the per-capability scores plus the warnings
// side channel: degraded or skipped capabilities are reported here so
// the never-throw contract stays visible to callers.
type OverallResult struct {
	Scores   []EnhancedMaturityScore
	Warnings []string
}

// CalculateOverallScore scores every capability in the input set. A
// capability whose definition is missing still produces an entry
// (base-score fallback, warning recorded); only a capability with no
// area id at all is skipped, and that too is recorded rather than
// silently dropped.
func CalculateOverallScore(capabilities []CapabilityInput, definitions map[string]*types.CapabilityDefinition) OverallResult {
	result := OverallResult{
		Scores: make([]EnhancedMaturityScore, 0, len(capabilities)),
	}

	for _, capability := range capabilities {
		if capability.AreaID == "" {
			result.Warnings = append(result.Warnings, "skipped capability with empty area id")
			continue
		}

		def := definitions[capability.AreaID]
		if def == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no definition for capability %q, using base-score fallback", capability.AreaID))
		}

		result.Scores = append(result.Scores,
			CalculateCapabilityScore(capability.AreaID, capability.AreaName, capability.Dimensions, def))
	}
	return result
}

// CalculateAverageScore returns the mean of values rounded to one
// decimal, or nil for empty input. Nil means "no data" and must never
// collapse into a zero score.
func CalculateAverageScore(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := Round1(sum / float64(len(values)))
	return &avg
}

// FinalizeScore computes the stored overallScore of an assessment at
// finalize time: the 1-decimal average over ratings with a maturity
// level above zero. Not-assessed (0) and not-applicable (-1) ratings
// are excluded. Nil when no rating qualifies.
func FinalizeScore(ratings []*types.OrbitRating) *float64 {
	var levels []float64
	for _, r := range ratings {
		if r != nil && r.CountsTowardScore() {
			levels = append(levels, float64(r.CurrentLevel))
		}
	}
	return CalculateAverageScore(levels)
}

// DimensionInputsFromRatings projects stored ratings onto the
// five-dimension scoring input. The dimension-level rating is the one
// without a sub-dimension; when several aspects exist the "overall"
// aspect wins, otherwise the first in key order (ratings arrive
// sorted from the store).
func DimensionInputsFromRatings(ratings []*types.OrbitRating) map[string]DimensionInput {
	out := make(map[string]DimensionInput, len(types.OrbitDimensions))
	for _, r := range ratings {
		if r == nil || r.SubDimensionID != "" {
			continue
		}
		if existing, ok := out[r.DimensionID]; ok && existing.MaturityLevel != 0 && r.AspectID != "overall" {
			continue
		}
		level := r.CurrentLevel
		if level < 0 {
			level = 0
		}
		out[r.DimensionID] = DimensionInput{
			MaturityLevel: level,
			Checklist:     r.ChecklistMap(),
		}
	}
	return out
}

func checklistKey(level, index int) string {
	return fmt.Sprintf("level%d-%d", level, index)
}

// Round2 rounds to two decimals (enhanced score precision).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal (display precision).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
