package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/locale"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

const (
	// ReferencesPerIsland is the number of supporting documents per island.
	ReferencesPerIsland = 5
	// EventsPerIsland is the number of biometric events per island.
	EventsPerIsland = 2
	// RelationshipProbability is the chance of each relationship rule firing.
	RelationshipProbability = 0.5
)

type targetPool int

const (
	poolIdentities targetPool = iota
	poolReferences
	poolEvents
)

type relationshipRule struct {
	edge common.EdgeType
	pool targetPool
}

// relationshipRules are evaluated in this order for every identity.
var relationshipRules = []relationshipRule{
	{edge: common.EdgeIncludedIn, pool: poolIdentities},
	{edge: common.EdgeCitedBy, pool: poolReferences},
	{edge: common.EdgeIdentifiedThroughBiometrics, pool: poolReferences},
	{edge: common.EdgeIdentityEquivalence, pool: poolIdentities},
	{edge: common.EdgeManualIdentityOverride, pool: poolIdentities},
	{edge: common.EdgeImmigrationStatusLinked, pool: poolEvents},
	{edge: common.EdgeSameApplication, pool: poolIdentities},
}

// IslandSupport lists the reference and event nodes created for one island.
type IslandSupport struct {
	References []string
	Events     []string
}

func (g *Generator) newReference(src *random.Source, fake locale.Sampler) common.Reference {
	return common.Reference{
		ID:        src.UUID(),
		DocType:   random.Choice(src, common.DocTypes),
		DocNumber: fake.DocumentNumber(),
	}
}

func (g *Generator) newEvent(src *random.Source, fake locale.Sampler) common.Event {
	return common.Event{
		ID:        src.UUID(),
		EventType: common.EventBiometricVerification,
		EventDate: fake.GenericDate(),
	}
}

// AddEdgesWithinIsland creates the island's supporting references and events
// and wires every identity to them with probabilistic relationships. Targets
// are always drawn from the island's own pools, so no edge created here
// leaves the island.
func (g *Generator) AddEdgesWithinIsland(src *random.Source, island common.Island) (IslandSupport, error) {
	if len(island) == 0 {
		return IslandSupport{}, fmt.Errorf("cannot weave an empty island")
	}
	for _, id := range island {
		if _, ok := g.graph.Identity(id); !ok {
			return IslandSupport{}, fmt.Errorf("%w: island member %s", common.ErrNodeNotFound, id)
		}
	}

	fake := g.provider.Sampler(locale.Default, src)
	support := IslandSupport{
		References: make([]string, 0, ReferencesPerIsland),
		Events:     make([]string, 0, EventsPerIsland),
	}

	for range ReferencesPerIsland {
		ref := g.newReference(src, fake)
		if err := g.graph.AddNode(ref); err != nil {
			return support, fmt.Errorf("failed to add reference: %w", err)
		}
		support.References = append(support.References, ref.ID)
	}
	for range EventsPerIsland {
		ev := g.newEvent(src, fake)
		if err := g.graph.AddNode(ev); err != nil {
			return support, fmt.Errorf("failed to add event: %w", err)
		}
		support.Events = append(support.Events, ev.ID)
	}

	pools := map[targetPool][]string{
		poolIdentities: island,
		poolReferences: support.References,
		poolEvents:     support.Events,
	}

	edges := 0
	for _, id := range island {
		for _, rule := range relationshipRules {
			if !src.Bernoulli(RelationshipProbability) {
				continue
			}
			target := random.Choice(src, pools[rule.pool])
			if _, err := g.graph.AddEdge(id, target, rule.edge); err != nil {
				return support, fmt.Errorf("failed to add %s edge: %w", rule.edge, err)
			}
			edges++
		}
	}

	logger.Debug("[Generator] Wove island", "base", island.Base(), "edges", edges)
	return support, nil
}
