package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/graph"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/file"
)

// snapshotOptions selects one stored snapshot.
type snapshotOptions struct {
	dir     string
	graphID string
	phase   string
}

func (o *snapshotOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.dir, "dir", ".", "directory written by generate")
	f.StringVar(&o.graphID, "id", "graph", "name of the graph files")
	f.StringVar(&o.phase, "phase", string(store.PhaseAnomalous), "snapshot phase: clean or anomalous")
}

func (o *snapshotOptions) open() (*file.GraphFileStorage, store.Phase, error) {
	phase, err := store.ParsePhase(o.phase)
	if err != nil {
		return nil, "", err
	}
	fs, err := file.NewGraphFileStorage(o.dir)
	if err != nil {
		return nil, "", err
	}
	return fs, phase, nil
}

func (o *snapshotOptions) load(ctx context.Context) (common.Snapshot, error) {
	fs, phase, err := o.open()
	if err != nil {
		return common.Snapshot{}, err
	}
	snap, err := fs.LoadSnapshot(ctx, o.graphID, phase)
	if err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to load %s snapshot of %s: %w", phase, o.graphID, err)
	}
	return snap, nil
}

func newInspectCmd() *cobra.Command {
	opts := &snapshotOptions{}
	var (
		node      string
		anomalies bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the islands, a single node or the anomaly labels of a snapshot",
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

			out := cmd.OutOrStdout()
			switch {
			case node != "":
				return graph.DescribeNode(out, g, node)
			case anomalies:
				for _, a := range snap.Anomalies {
					line := fmt.Sprintf("%-22s island %d  %s -> %s", a.Kind, a.Island, a.Source, a.Target)
					if a.Node != "" {
						line += "  node " + a.Node
					}
					if a.Fallback {
						line += "  (fallback)"
					}
					if _, err := fmt.Fprintln(out, line); err != nil {
						return err
					}
				}
				return nil
			default:
				if err := printStats(out, snap); err != nil {
					return err
				}
				return graph.DescribeIslands(out, g, snap.Islands)
			}
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&node, "node", "", "describe the node with this id and its edges")
	cmd.Flags().BoolVar(&anomalies, "anomalies", false, "list the injected anomaly labels")
	return cmd
}
