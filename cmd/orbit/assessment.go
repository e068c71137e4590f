package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFinalizeCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "finalize <area-id>",
		Short: "Finalize the area's current assessment",
		Long: `Finalize locks the current assessment: the overall score is computed
from the assessed ratings, the finalize timestamp is set and the
given tags are applied and registered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			assessment, err := a.assessments.GetCurrentByAreaID(cmd.Context(), nil, args[0])
			if err != nil {
				return fmt.Errorf("area %s: %w", args[0], err)
			}
			finalized, err := a.assessmentSvc.Finalize(cmd.Context(), assessment.ID, tags)
			if err != nil {
				return err
			}

			if finalized.OverallScore != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "finalized %s with score %.1f\n",
					finalized.CapabilityAreaID, *finalized.OverallScore)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "finalized %s (no assessed ratings, no score)\n",
					finalized.CapabilityAreaID)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to apply (repeatable)")
	return cmd
}

func newReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <area-id>",
		Short: "Reopen a finalized assessment for editing",
		Long: `Reopen snapshots the finalized assessment to history and moves it
back to in-progress; its ratings are marked carried-forward. Use
revert to discard the edits and restore the snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			assessment, err := a.assessments.GetCurrentByAreaID(cmd.Context(), nil, args[0])
			if err != nil {
				return fmt.Errorf("area %s: %w", args[0], err)
			}
			if _, err := a.archiver.ReopenForEdit(cmd.Context(), assessment.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reopened %s for editing\n", args[0])
			return nil
		},
	}
}

func newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <area-id>",
		Short: "Discard edits and restore the latest snapshot",
		Long: `Revert restores the most recent history snapshot of the area's
assessment and deletes it. In-progress edits are discarded; this
cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			assessment, err := a.assessments.GetCurrentByAreaID(cmd.Context(), nil, args[0])
			if err != nil {
				return fmt.Errorf("area %s: %w", args[0], err)
			}
			if err := a.archiver.RevertEdit(cmd.Context(), assessment.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %s to its latest snapshot\n", args[0])
			return nil
		},
	}
}
