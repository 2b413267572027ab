package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/idisland/pkg/export"
)

func newExportCmd() *cobra.Command {
	opts := &snapshotOptions{}
	var (
		outPath string
		baseURI string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot as N-Quads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			g, err := snap.Graph()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			return export.WriteNQuads(w, export.Triples(g, baseURI))
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&baseURI, "base-uri", export.DefaultBaseURI, "namespace of subjects and predicates")
	return cmd
}
