package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

// GenerateIdentityIslands builds n islands and then weaves every new island.
//
// Each island gets its own source derived from src before any island is
// built, so island i only depends on the seed and its position.
func (g *Generator) GenerateIdentityIslands(src *random.Source, n int) error {
	if n < 0 {
		return fmt.Errorf("island count must not be negative, got %d", n)
	}

	sources := make([]*random.Source, n)
	for i := range sources {
		sources[i] = src.Derive()
	}

	start := len(g.islands)
	for i := range n {
		island, err := g.GenerateRandomIdentityIsland(sources[i])
		if err != nil {
			return fmt.Errorf("failed to generate island %d: %w", start+i, err)
		}
		g.islands = append(g.islands, island)
	}

	for i := range n {
		if _, err := g.AddEdgesWithinIsland(sources[i], g.islands[start+i]); err != nil {
			return fmt.Errorf("failed to add edges within island %d: %w", start+i, err)
		}
	}

	logger.Info(
		"[Generator] Generated identity islands",
		"islands", n,
		"nodes", g.graph.NodeCount(),
		"edges", g.graph.EdgeCount(),
	)
	return nil
}

// RunParams configures a complete generation run.
type RunParams struct {
	Seed              uint64
	Islands           int
	AnomalyPercentage float64
	Generator         NewGeneratorParams
}

// RunResult holds both outputs of a run: the clean islands before anomaly
// injection and the final corrupted data set with its labels.
type RunResult struct {
	Clean     common.Snapshot
	Anomalous common.Snapshot
	Labels    []common.AnomalyLabel
}

// Run seeds a source, generates the islands, captures the clean snapshot and
// then injects anomalies. The same params always yield the same result.
func Run(params RunParams) (*RunResult, error) {
	if _, err := AnomalyCount(params.Islands, params.AnomalyPercentage); err != nil {
		return nil, err
	}

	gen, err := NewGenerator(params.Generator)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	src := random.New(params.Seed)
	logger.Debug("[Generator] Starting run", "seed", params.Seed, "islands", params.Islands, "as_of", gen.AsOf().Format("2006-01-02"))

	if err := gen.GenerateIdentityIslands(src, params.Islands); err != nil {
		return nil, err
	}
	clean := gen.Snapshot()

	labels, err := gen.AddAnomalies(src, params.AnomalyPercentage)
	if err != nil {
		return nil, fmt.Errorf("failed to add anomalies: %w", err)
	}

	return &RunResult{
		Clean:     clean,
		Anomalous: gen.Snapshot(),
		Labels:    labels,
	}, nil
}
