package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbitlabs/orbit-assess/internal/export"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

func newExportCmd() *cobra.Command {
	var (
		scopeKind string
		domainID  string
		areaID    string
		format    string
		bundle    bool
	)

	cmd := &cobra.Command{
		Use:   "export <out-file>",
		Short: "Export the store to a file",
		Long: `Export writes a versioned snapshot of the store. The default JSON
payload round-trips through import; csv and markdown are one-way
reports. With --bundle the output is a ZIP archive carrying the JSON
payload plus all attachment blobs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			scope := export.Scope{Kind: scopeKind, DomainID: domainID, AreaID: areaID}
			builder := export.NewBuilder(a.store.DB(), a.log,
				a.assessments, a.ratings, a.historyRepo, a.tags, a.attachments)
			payload, err := builder.Build(cmd.Context(), scope)
			if err != nil {
				return err
			}

			outPath := args[0]
			if bundle {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				if err := export.WriteBundle(f, payload, a.blobs); err != nil {
					return err
				}
			} else {
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				raw, err := export.Encode(payload, f)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, raw, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d assessment(s), %d rating(s), %d history entries to %s\n",
				payload.Metadata.TotalAssessments, payload.Metadata.TotalRatings,
				payload.Metadata.TotalHistory, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeKind, "scope", types.ScopeFull, "export scope: full, domain or area")
	cmd.Flags().StringVar(&domainID, "domain", "", "domain id (scope=domain)")
	cmd.Flags().StringVar(&areaID, "area", "", "capability area id (scope=area)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, csv or markdown")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "write a ZIP bundle with attachment blobs")
	return cmd
}
