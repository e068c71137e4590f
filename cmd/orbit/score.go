package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/orbitlabs/orbit-assess/internal/content"
	"github.com/orbitlabs/orbit-assess/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <area-id>",
		Short: "Compute the enhanced maturity score for a capability area",
		Long: `Score reads the area's current ratings and the capability catalog
and prints the enhanced maturity score: base maturity level plus
partial credit from next-level checklist completion, per dimension
and overall.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			areaID := args[0]
			assessment, err := a.assessments.GetCurrentByAreaID(cmd.Context(), nil, areaID)
			if err != nil {
				return fmt.Errorf("area %s: %w", areaID, err)
			}
			ratings, err := a.ratings.GetByAssessmentID(cmd.Context(), nil, assessment.ID)
			if err != nil {
				return err
			}

			catalog, err := content.Load(a.cfg.ContentDir, a.log)
			if err != nil {
				return err
			}

			dims := scoring.DimensionInputsFromRatings(ratings)
			score := scoring.CalculateCapabilityScore(areaID, assessment.AreaName, dims, catalog.Get(areaID))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", score.AreaName, score.CapabilityAreaID)
			if score.Degraded {
				fmt.Fprintln(out, "  (no catalog definition: base scores only)")
			}
			fmt.Fprintf(out, "  overall: %.2f (base %.2f + partial %.2f)\n",
				score.OverallScore, score.BaseScore, score.PartialCredit)

			names := make([]string, 0, len(score.Dimensions))
			for name := range score.Dimensions {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				d := score.Dimensions[name]
				fmt.Fprintf(out, "  %-12s level %d", name, d.MaturityLevel)
				if d.Completion.Total > 0 {
					fmt.Fprintf(out, "  +%.2f (%d/%d next-level items, %.0f%%)",
						d.PartialCredit, d.Completion.Completed, d.Completion.Total, d.Completion.Percentage)
				}
				fmt.Fprintf(out, "  = %.2f\n", d.FinalScore)
			}
			return nil
		},
	}
	return cmd
}
