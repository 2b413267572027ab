package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSimilarCmd() *cobra.Command {
	opts := &snapshotOptions{}
	var limit int

	cmd := &cobra.Command{
		Use:   "similar <identity-id>",
		Short: "Rank the identities of a snapshot by name similarity to one identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, phase, err := opts.open()
			if err != nil {
				return err
			}
			hits, err := fs.FindSimilarIdentities(cmd.Context(), opts.graphID, phase, args[0], limit)
			if err != nil {
				return err
			}
			for _, hit := range hits {
				if _, err := fmt.Fprintf(
					cmd.OutOrStdout(), "%.3f  %s  %q  %s\n",
					hit.Score, hit.Identity.ID, hit.Identity.Name, hit.Identity.Nationality,
				); err != nil {
					return err
				}
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of hits")
	return cmd
}
