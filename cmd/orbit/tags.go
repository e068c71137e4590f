package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the tag registry",
	}
	cmd.AddCommand(newTagsListCmd(), newTagsRenameCmd(), newTagsCleanupCmd())
	return cmd
}

func newTagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags with usage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			tags, err := a.tagService.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tags registered")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s used %d, last %s\n",
					t.Name, t.UsageCount, t.LastUsed.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newTagsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a tag and rewrite all assessments using it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			changed, err := a.tagService.RenameTag(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %q to %q (%d assessment(s) updated)\n",
				args[0], args[1], changed)
			return nil
		},
	}
}

func newTagsCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tags that are no longer used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			deleted, err := a.tagService.CleanupUnused(cmd.Context())
			if err != nil {
				return err
			}
			if len(deleted) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to clean up")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", strings.Join(deleted, ", "))
			return nil
		},
	}
}
