package graph

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/locale"
)

// Generator builds identity islands into a single multigraph and corrupts
// them with controlled anomalies. It owns the graph and the island
// collection for the duration of one generation run.
//
// A Generator must be created using NewGenerator. It is not safe for
// concurrent use; generation and anomaly injection run strictly in sequence.
type Generator struct {
	graph     *common.Graph
	islands   []common.Island
	anomalies []common.AnomalyLabel

	provider      locale.Provider
	asOf          time.Time
	minAge        int
	maxAge        int
	maxIdentities int
	threshold     float64
}

// NewGeneratorParams defines the configuration for a new Generator.
//
// AsOf is the reference date for ages and sampled dates; fixing it is
// required for byte-identical reruns. MinAge and MaxAge bound the sampled
// age of base identities. MaxIdentities is the upper bound of the requested
// island size. SimilarityThreshold is used by mislinked identity anomalies.
type NewGeneratorParams struct {
	Provider            locale.Provider
	AsOf                time.Time
	MinAge              int
	MaxAge              int
	MaxIdentities       int
	SimilarityThreshold float64
}

// NewGenerator creates a Generator with an empty graph.
//
// Example:
//
//	gen, err := graph.NewGenerator(graph.NewGeneratorParams{
//		AsOf: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	src := random.New(42)
//	err = gen.GenerateIdentityIslands(src, 10)
func NewGenerator(params NewGeneratorParams) (*Generator, error) {
	asOf := params.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	y, m, d := asOf.Date()
	asOf = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	provider := params.Provider
	if provider == nil {
		provider = locale.NewFakerProvider(asOf)
	}

	minAge := params.MinAge
	if minAge <= 0 {
		minAge = 1
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = 80
	}
	if maxAge < minAge {
		return nil, fmt.Errorf("max age %d is below min age %d", maxAge, minAge)
	}

	maxIdentities := params.MaxIdentities
	if maxIdentities <= 0 {
		maxIdentities = 5
	}

	threshold := params.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if threshold > 1 {
		return nil, fmt.Errorf("similarity threshold %.2f is above 1", threshold)
	}

	return &Generator{
		graph:         common.NewGraph(),
		provider:      provider,
		asOf:          asOf,
		minAge:        minAge,
		maxAge:        maxAge,
		maxIdentities: maxIdentities,
		threshold:     threshold,
	}, nil
}

// Graph returns the generator's graph. Callers must not mutate it while
// the generator is still in use.
func (g *Generator) Graph() *common.Graph {
	return g.graph
}

// Islands returns a copy of the island collection.
func (g *Generator) Islands() []common.Island {
	return common.CloneIslands(g.islands)
}

// Anomalies returns the labels of all anomalies injected so far.
func (g *Generator) Anomalies() []common.AnomalyLabel {
	return append([]common.AnomalyLabel(nil), g.anomalies...)
}

// Snapshot captures the current graph, islands and anomaly labels.
func (g *Generator) Snapshot() common.Snapshot {
	return common.NewSnapshot(g.graph, g.islands, g.anomalies)
}

// AsOf returns the reference date used for ages and sampled dates.
func (g *Generator) AsOf() time.Time {
	return g.asOf
}
