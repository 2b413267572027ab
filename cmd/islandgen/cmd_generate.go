package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/export"
	"github.com/OFFIS-RIT/idisland/pkg/graph"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/file"
)

type generateOptions struct {
	profile  string
	flags    Profile
	outDir   string
	graphID  string
	nquads   bool
	describe bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a graph and write its clean and anomalous snapshots",
		Example: `  islandgen generate --seed 42 --islands 100 --anomaly-percentage 10 --as-of 2024-01-01
  islandgen generate --profile profile.yaml --islands 20 --nquads`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "YAML generation profile; flags override its values")
	f.Uint64Var(&opts.flags.Seed, "seed", 0, "seed of the random stream")
	f.IntVar(&opts.flags.Islands, "islands", 10, "number of identity islands")
	f.Float64Var(&opts.flags.AnomalyPercentage, "anomaly-percentage", 0, "anomalies as a percentage of the island count")
	f.StringVar(&opts.flags.AsOf, "as-of", "", "reference date yyyy-mm-dd for ages and dates (default today)")
	f.IntVar(&opts.flags.MinAge, "min-age", 0, "minimum age of base identities (default 1)")
	f.IntVar(&opts.flags.MaxAge, "max-age", 0, "maximum age of base identities (default 80)")
	f.IntVar(&opts.flags.MaxIdentities, "max-identities", 0, "upper bound of identities per island (default 5)")
	f.Float64Var(&opts.flags.SimilarityThreshold, "similarity-threshold", 0, "name similarity needed for mislinks (default 0.6)")
	f.StringVar(&opts.outDir, "out", ".", "output directory")
	f.StringVar(&opts.graphID, "id", "graph", "name of the generated graph files")
	f.BoolVar(&opts.nquads, "nquads", false, "also write N-Quads next to the snapshots")
	f.BoolVar(&opts.describe, "describe", false, "print the anomalous islands after generation")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts *generateOptions) error {
	profile := Profile{Islands: opts.flags.Islands}
	if opts.profile != "" {
		loaded, err := loadProfile(opts.profile)
		if err != nil {
			return err
		}
		profile = loaded
	}
	profile.overlay(cmd.Flags(), opts.flags)

	params, err := profile.runParams()
	if err != nil {
		return err
	}

	result, err := graph.Run(params)
	if err != nil {
		return fmt.Errorf("failed to generate graph: %w", err)
	}

	fs, err := file.NewGraphFileStorage(opts.outDir)
	if err != nil {
		return err
	}
	phases := map[store.Phase]common.Snapshot{
		store.PhaseClean:     result.Clean,
		store.PhaseAnomalous: result.Anomalous,
	}
	for _, phase := range store.Phases {
		snap := phases[phase]
		if err := fs.SaveSnapshot(ctx, opts.graphID, phase, snap); err != nil {
			return fmt.Errorf("failed to save %s snapshot: %w", phase, err)
		}
		if opts.nquads {
			if err := writeNQuadsFile(nquadsPath(fs, opts.graphID, phase), snap); err != nil {
				return err
			}
		}
	}

	logger.Info(
		"[CLI] Generated graph",
		"id", opts.graphID,
		"seed", params.Seed,
		"islands", len(result.Anomalous.Islands),
		"anomalies", len(result.Labels),
		"out", opts.outDir,
	)

	out := cmd.OutOrStdout()
	if err := printStats(out, result.Anomalous); err != nil {
		return err
	}
	if opts.describe {
		g, err := result.Anomalous.Graph()
		if err != nil {
			return err
		}
		return graph.DescribeIslands(out, g, result.Anomalous.Islands)
	}
	return nil
}

func nquadsPath(fs *file.GraphFileStorage, graphID string, phase store.Phase) string {
	return strings.TrimSuffix(fs.Path(graphID, phase), store.SnapshotExtension) + ".nq"
}

func writeNQuadsFile(path string, snap common.Snapshot) error {
	g, err := snap.Graph()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteNQuads(f, export.Triples(g, export.DefaultBaseURI)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func printStats(w io.Writer, snap common.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(graph.ComputeStats(snap)); err != nil {
		return fmt.Errorf("failed to print stats: %w", err)
	}
	return enc.Close()
}
