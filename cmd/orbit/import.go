package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbitlabs/orbit-assess/internal/importer"
)

func newImportCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an export payload (.json) or bundle (.zip)",
		Long: `Import merges an export file into the local store. Each assessment
is reconciled against the current record of its capability area:
newer data replaces (archiving the local state), older finalized data
is filed as history, near-duplicates are skipped. Re-importing the
same file is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			rec := importer.NewReconciler(a.store.DB(), a.log,
				a.assessments, a.ratings, a.historyRepo, a.tags, a.attachments, a.blobs)

			opts := importer.Options{}
			if !quiet {
				opts.Progress = func(pct int, msg string) {
					fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s\n", pct, msg)
				}
			}

			path := args[0]
			var res *importer.Result
			if strings.HasSuffix(strings.ToLower(path), ".zip") {
				res, err = rec.ImportBundle(cmd.Context(), path, opts)
			} else {
				raw, readErr := os.ReadFile(path)
				if readErr != nil {
					return fmt.Errorf("read %s: %w", path, readErr)
				}
				res, err = rec.Import(cmd.Context(), raw, opts)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported as current: %d\n", res.ImportedAsCurrent)
			fmt.Fprintf(out, "imported as history: %d\n", res.ImportedAsHistory)
			fmt.Fprintf(out, "skipped:             %d\n", res.Skipped)
			for _, d := range res.Details {
				fmt.Fprintln(out, "  ", d)
			}
			if !res.Success {
				for _, e := range res.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", e)
				}
				return fmt.Errorf("import finished with %d error(s)", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}
