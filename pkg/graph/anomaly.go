package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/locale"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

// AnomalyCount returns floor(islands * percentage / 100).
func AnomalyCount(islands int, percentage float64) (int, error) {
	if math.IsNaN(percentage) || math.IsInf(percentage, 0) || percentage < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPercentage, percentage)
	}
	return int(math.Floor(float64(islands) * percentage / 100)), nil
}

// AddAnomalies injects floor(islands * percentage / 100) anomalies.
// Each anomaly picks an island and a member of it, then applies one anomaly
// kind drawn uniformly at random. Mislinked identities need a second island
// and are not drawn while fewer than two islands exist.
//
// Islands grow when a duplicate identity is injected, so later draws can pick
// the duplicate as source.
func (g *Generator) AddAnomalies(src *random.Source, percentage float64) ([]common.AnomalyLabel, error) {
	count, err := AnomalyCount(len(g.islands), percentage)
	if err != nil {
		return nil, err
	}
	if len(g.islands) == 0 || count == 0 {
		return nil, nil
	}

	fake := g.provider.Sampler(locale.Default, src)
	labels := make([]common.AnomalyLabel, 0, count)
	for range count {
		idx := src.IntN(len(g.islands))
		sourceID := random.Choice(src, g.islands[idx])
		source, ok := g.graph.Identity(sourceID)
		if !ok {
			return labels, fmt.Errorf("%w: island member %s", common.ErrNodeNotFound, sourceID)
		}

		label := common.AnomalyLabel{
			Kind:   g.drawAnomalyKind(src),
			Island: idx,
			Source: sourceID,
		}

		switch label.Kind {
		case common.AnomalyDuplicateIdentity:
			err = g.injectDuplicate(src, fake, idx, source, &label)
		case common.AnomalyInconsistentReference:
			err = g.injectInconsistentReference(src, fake, idx, &label)
		case common.AnomalyMislinkedIdentity:
			err = g.injectMislink(src, idx, source, &label)
		case common.AnomalyIncorrectEvent:
			err = g.injectIncorrectEvent(src, fake, idx, &label)
		}
		if err != nil {
			return labels, fmt.Errorf("failed to inject %s: %w", label.Kind, err)
		}

		labels = append(labels, label)
		g.anomalies = append(g.anomalies, label)
	}

	logger.Info("[Generator] Injected anomalies", "count", len(labels), "islands", len(g.islands), "percentage", percentage)
	return labels, nil
}

func (g *Generator) drawAnomalyKind(src *random.Source) common.AnomalyKind {
	for {
		kind := random.Choice(src, common.AnomalyKinds)
		if kind != common.AnomalyMislinkedIdentity || len(g.islands) >= 2 {
			return kind
		}
	}
}

// injectDuplicate adds a copy of source with a different first name, links it
// from source as an equivalent identity and appends it to the island.
func (g *Generator) injectDuplicate(
	src *random.Source,
	fake locale.Sampler,
	idx int,
	source common.Identity,
	label *common.AnomalyLabel,
) error {
	duplicate := common.Identity{
		ID:          src.UUID(),
		Name:        replaceFirstToken(source.Name, fake.FirstName()),
		Age:         source.Age,
		DateOfBirth: source.DateOfBirth,
		Nationality: source.Nationality,
	}
	if err := g.graph.AddNode(duplicate); err != nil {
		return err
	}
	if _, err := g.graph.AddEdge(source.ID, duplicate.ID, common.EdgeIdentityEquivalence); err != nil {
		return err
	}
	g.islands[idx] = append(g.islands[idx], duplicate.ID)

	label.Node = duplicate.ID
	label.Target = duplicate.ID
	return nil
}

// injectInconsistentReference cites a fresh, unrelated document from a member
// of the island.
func (g *Generator) injectInconsistentReference(
	src *random.Source,
	fake locale.Sampler,
	idx int,
	label *common.AnomalyLabel,
) error {
	ref := g.newReference(src, fake)
	if err := g.graph.AddNode(ref); err != nil {
		return err
	}
	member := random.Choice(src, g.islands[idx])
	if _, err := g.graph.AddEdge(member, ref.ID, common.EdgeCitedBy); err != nil {
		return err
	}

	label.Node = ref.ID
	label.Source = member
	label.Target = ref.ID
	return nil
}

// injectMislink links source to an identity of another island. A similar
// identity by name is preferred; without one any identity of the other
// islands is picked.
func (g *Generator) injectMislink(
	src *random.Source,
	idx int,
	source common.Identity,
	label *common.AnomalyLabel,
) error {
	others := make([]int, 0, len(g.islands)-1)
	for i := range g.islands {
		if i != idx {
			others = append(others, i)
		}
	}
	other := random.Choice(src, others)

	candidates, err := g.graph.Identities(g.islands[other])
	if err != nil {
		return err
	}
	target, ok := FindSimilarIdentity(candidates, source, AttributeName, g.threshold)
	if !ok {
		pool := make([]string, 0)
		for _, i := range others {
			pool = append(pool, g.islands[i]...)
		}
		target = random.Choice(src, pool)
		label.Fallback = true
	}

	if _, err := g.graph.AddEdge(source.ID, target, common.EdgeIdentityEquivalence); err != nil {
		return err
	}
	label.Target = target
	return nil
}

// injectIncorrectEvent links a member of the island to a fresh biometric
// event through IMMIGRATION_STATUS_LINKED.
func (g *Generator) injectIncorrectEvent(
	src *random.Source,
	fake locale.Sampler,
	idx int,
	label *common.AnomalyLabel,
) error {
	ev := g.newEvent(src, fake)
	if err := g.graph.AddNode(ev); err != nil {
		return err
	}
	member := random.Choice(src, g.islands[idx])
	if _, err := g.graph.AddEdge(member, ev.ID, common.EdgeImmigrationStatusLinked); err != nil {
		return err
	}

	label.Node = ev.ID
	label.Source = member
	label.Target = ev.ID
	return nil
}

// replaceFirstToken swaps the first whitespace token of name for first. A
// single-token name keeps its token after the new first name.
func replaceFirstToken(name, first string) string {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return first
	case 1:
		return first + " " + tokens[0]
	default:
		return first + " " + strings.Join(tokens[1:], " ")
	}
}
